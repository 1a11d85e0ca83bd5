package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tangerg/graphrag/config"
	"github.com/tangerg/graphrag/document"
	"github.com/tangerg/graphrag/model"
	"github.com/tangerg/graphrag/pipelineerr"
	"github.com/tangerg/graphrag/storage"
)

type fakeChatClient struct{}

func (fakeChatClient) Chat(context.Context, []model.Message) (*model.ChatResult, error) {
	return &model.ChatResult{Content: `{"entities":[{"title":"Alice","type":"person"},{"title":"Bob","type":"person"}],"relationships":[{"source":"Alice","target":"Bob","weight":0.8}]}`}, nil
}

func newTestContext(t *testing.T) (*config.GraphRagConfig, *RunContext) {
	t.Helper()
	cfg := config.Default()
	cfg.Input.Storage.BaseDir = "/unused"
	cfg.Heuristics = config.Heuristics{}

	input := storage.NewMemoryStorage()
	if err := input.Set(context.Background(), "doc.txt", strings.NewReader("Alice and Bob collaborate closely.")); err != nil {
		t.Fatal(err)
	}

	services := NewServices()
	services.ChatClients[defaultChatModelID] = fakeChatClient{}

	rc := &RunContext{
		InputStorage:  input,
		OutputStorage: storage.NewMemoryStorage(),
		Cache:         storage.NewMemoryStorage(),
		Services:      services,
	}
	return cfg, rc
}

func TestRunner_RunsFullPipelineEndToEnd(t *testing.T) {
	cfg, rc := newTestContext(t)
	runner := NewRunner(DefaultRegistry())

	require.NoError(t, runner.Run(context.Background(), cfg, rc))
	assert.NotEmpty(t, rc.RunID, "expected Run to assign a run id")

	documents, err := storage.LoadTable[document.Document](context.Background(), rc.OutputStorage, "documents")
	require.NoError(t, err)
	require.Len(t, documents, 1)
	assert.NotEmpty(t, documents[0].TextUnitIds, "expected the document to be back-linked to at least one text unit")
	assert.Equal(t, 1, rc.Stats.NumDocuments)
	assert.Greater(t, rc.Stats.NumTextUnits, 0)
	for _, name := range BuiltinOrder {
		_, ok := rc.Stats.Durations[name]
		assert.Truef(t, ok, "expected a recorded duration for workflow %q", name)
	}
}

func TestRunner_SkipsWorkflowsAlreadyMarkedComplete(t *testing.T) {
	cfg, rc := newTestContext(t)
	runner := NewRunner(DefaultRegistry())
	require.NoError(t, runner.Run(context.Background(), cfg, rc))

	var started []string
	rc.Callbacks = callbackRecorder{started: &started}
	rc.Stats = NewStats()

	require.NoError(t, runner.Run(context.Background(), cfg, rc))
	assert.Empty(t, started, "expected a second run to skip every already-completed workflow")
}

func TestRunner_ForceReRunsEveryWorkflow(t *testing.T) {
	cfg, rc := newTestContext(t)
	runner := NewRunner(DefaultRegistry())
	require.NoError(t, runner.Run(context.Background(), cfg, rc))

	var started []string
	rc.Callbacks = callbackRecorder{started: &started}
	runner.Force = true

	require.NoError(t, runner.Run(context.Background(), cfg, rc))
	assert.Len(t, started, len(BuiltinOrder), "expected every workflow to re-run under Force")
}

func TestRunner_StopsAtFirstErrorAndSurfacesIt(t *testing.T) {
	cfg, rc := newTestContext(t)
	registry := NewRegistry()
	registry.Register("load_input_documents", func(context.Context, *config.GraphRagConfig, *RunContext) (Result, error) {
		return Result{}, pipelineerr.Configuration("boom")
	})
	for _, name := range BuiltinOrder[1:] {
		registry.Register(name, func(context.Context, *config.GraphRagConfig, *RunContext) (Result, error) {
			return Result{}, nil
		})
	}
	runner := &Runner{Registry: registry, Order: BuiltinOrder}

	err := runner.Run(context.Background(), cfg, rc)
	assert.Error(t, err, "expected the run to stop and surface the first workflow's error")
}

func TestRunner_HonorsCancellationBeforeStarting(t *testing.T) {
	cfg, rc := newTestContext(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := NewRunner(DefaultRegistry())
	err := runner.Run(ctx, cfg, rc)
	assert.Error(t, err, "expected a cancellation error for an already-cancelled context")
}

type callbackRecorder struct {
	started *[]string
}

func (c callbackRecorder) WorkflowStarted(name string)    { *c.started = append(*c.started, name) }
func (c callbackRecorder) WorkflowCompleted(string, error) {}
