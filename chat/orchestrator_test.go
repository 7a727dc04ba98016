package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"scrapingai/model"
	"scrapingai/provider/testutil"
)

// fakeResolver hands back a scripted provider regardless of model id,
// recording the credential it was resolved with.
type fakeResolver struct {
	provider model.Provider
	lastKey  string
}

func (r *fakeResolver) Resolve(modelID, apiKey string) (model.Provider, error) {
	if apiKey == "" {
		return nil, model.ErrMissingAPIKey
	}
	r.lastKey = apiKey
	return r.provider, nil
}

// fakeKeyStore serves stored credentials from a map keyed by service name.
type fakeKeyStore struct {
	keys map[string]string
}

func (k *fakeKeyStore) GetAPIKey(_ context.Context, userID, serviceName string) (string, error) {
	return k.keys[serviceName], nil
}

func newTestOrchestrator(p model.Provider, keys *fakeKeyStore) *Orchestrator {
	resolver := &fakeResolver{provider: p}
	materializer := NewMaterializer(newFakeFileStore(), nil)
	return NewOrchestrator("session-1", "user-1", resolver, keys, materializer, nil, nil)
}

func TestSendStreamsAndAppendsTurn(t *testing.T) {
	mock := testutil.NewMockProvider("Hello", ", ", "world")
	o := newTestOrchestrator(mock, &fakeKeyStore{})

	var chunks []string
	reply, err := o.Send(context.Background(), "gpt-4o", "sk-test", "hi", func(chunk string) error {
		chunks = append(chunks, chunk)
		return nil
	})
	if err != nil {
		t.Fatalf("Send() error: %v", err)
	}

	if reply != "Hello, world" {
		t.Errorf("reply = %q, want %q", reply, "Hello, world")
	}
	if strings.Join(chunks, "") != reply {
		t.Errorf("chunk concatenation %q differs from reply %q", strings.Join(chunks, ""), reply)
	}

	transcript := o.Transcript()
	if len(transcript) != 2 {
		t.Fatalf("transcript has %d messages, want 2", len(transcript))
	}
	if transcript[0].Role != model.RoleUser || transcript[1].Role != model.RoleAssistant {
		t.Errorf("transcript roles = [%s %s], want [user assistant]", transcript[0].Role, transcript[1].Role)
	}
	if o.State() != StateIdle {
		t.Errorf("state = %s, want idle (no files extracted)", o.State())
	}
}

func TestSendMissingCredential(t *testing.T) {
	mock := testutil.NewMockProvider("never")
	o := newTestOrchestrator(mock, &fakeKeyStore{})

	_, err := o.Send(context.Background(), "gpt-4o", "", "hi", nil)
	if !errors.Is(err, model.ErrMissingAPIKey) {
		t.Fatalf("Send() error = %v, want ErrMissingAPIKey", err)
	}
	if o.State() != StateAwaitingCredential {
		t.Errorf("state = %s, want awaiting_credential", o.State())
	}
	if len(mock.Calls) != 0 {
		t.Error("provider was invoked despite missing credential")
	}
	if len(o.Transcript()) != 0 {
		t.Error("transcript grew despite undispatched request")
	}
}

func TestSendUsesStoredCredential(t *testing.T) {
	mock := testutil.NewMockProvider("ok")
	keys := &fakeKeyStore{keys: map[string]string{"Anthropic": "sk-stored"}}
	o := newTestOrchestrator(mock, keys)
	resolver := o.resolver.(*fakeResolver)

	if _, err := o.Send(context.Background(), "claude-3-opus-20240229", "", "hi", nil); err != nil {
		t.Fatalf("Send() error: %v", err)
	}
	if resolver.lastKey != "sk-stored" {
		t.Errorf("resolved with key %q, want stored key", resolver.lastKey)
	}
}

func TestSendRejectsConcurrentStream(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})

	blocking := &testutil.MockProvider{}
	blocking.ChatFunc = func(ctx context.Context, messages []model.Message, callback model.StreamCallback) error {
		close(started)
		<-release
		return callback("done")
	}

	o := newTestOrchestrator(blocking, &fakeKeyStore{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if _, err := o.Send(context.Background(), "gpt-4o", "sk", "first", nil); err != nil {
			t.Errorf("first Send() error: %v", err)
		}
	}()

	<-started
	_, err := o.Send(context.Background(), "gpt-4o", "sk", "second", nil)
	if !errors.Is(err, ErrStreamInFlight) {
		t.Errorf("second Send() error = %v, want ErrStreamInFlight", err)
	}

	close(release)
	wg.Wait()
}

func TestSendDiscardsFailedTurn(t *testing.T) {
	failure := &model.CompletionError{Provider: "OpenAI", Status: 500, Err: errors.New("upstream down")}
	o := newTestOrchestrator(testutil.NewFailingProvider(failure), &fakeKeyStore{})

	_, err := o.Send(context.Background(), "gpt-4o", "sk", "hi", nil)

	var completionErr *model.CompletionError
	if !errors.As(err, &completionErr) {
		t.Fatalf("Send() error = %v, want CompletionError", err)
	}
	if len(o.Transcript()) != 0 {
		t.Error("failed turn left messages in the transcript")
	}
	if o.State() != StateIdle {
		t.Errorf("state = %s, want idle", o.State())
	}
}

func TestSendOffersExtraction(t *testing.T) {
	mock := testutil.NewMockProvider(testutil.AssistantReplyWithFiles)
	o := newTestOrchestrator(mock, &fakeKeyStore{})

	if _, err := o.Send(context.Background(), "gpt-4o", "sk", "write the scraper", nil); err != nil {
		t.Fatalf("Send() error: %v", err)
	}

	if o.State() != StateExtractionOffered {
		t.Fatalf("state = %s, want extraction_offered", o.State())
	}

	pending := o.PendingFiles()
	if len(pending) != 2 {
		t.Fatalf("pending files = %d, want 2", len(pending))
	}
	if pending[0].Path != "app/scraper.py" || pending[1].Path != "config.toml" {
		t.Errorf("pending paths = [%s %s]", pending[0].Path, pending[1].Path)
	}

	result := o.MaterializePending(context.Background())
	if len(result.Saved) != 2 || len(result.Failed) != 0 {
		t.Errorf("materialize saved %d failed %d, want 2/0", len(result.Saved), len(result.Failed))
	}
	if o.State() != StateIdle {
		t.Errorf("state after materialize = %s, want idle", o.State())
	}
	if len(o.PendingFiles()) != 0 {
		t.Error("pending files not cleared after materialization")
	}
}

func TestEndToEndDefaultProviderFlow(t *testing.T) {
	reply := "```python file=\"app/hello.py\"\nprint(\"hello world\")\n```"
	mock := testutil.NewMockProvider(reply)
	o := newTestOrchestrator(mock, &fakeKeyStore{})

	text, err := o.Send(context.Background(), "gpt-4o", "sk-valid", "write a hello world in app/hello.py", nil)
	if err != nil {
		t.Fatalf("Send() error: %v", err)
	}
	if text != reply {
		t.Errorf("reply = %q, want %q", text, reply)
	}

	pending := o.PendingFiles()
	if len(pending) != 1 {
		t.Fatalf("pending files = %d, want 1", len(pending))
	}
	f := pending[0]
	if f.Path != "app/hello.py" || f.Language != "python" || f.Content != "print(\"hello world\")\n" {
		t.Errorf("extracted file = %+v", f)
	}

	result := o.MaterializePending(context.Background())
	if len(result.Saved) != 1 {
		t.Fatalf("saved %d files, want 1", len(result.Saved))
	}
	if result.Saved[0].Path != "app/hello.py" {
		t.Errorf("saved path = %q, want app/hello.py", result.Saved[0].Path)
	}
}
