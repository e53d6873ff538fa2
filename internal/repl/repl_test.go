package repl

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hass-mcp-server/internal/logging"
	"hass-mcp-server/internal/resources"
	"hass-mcp-server/pkg/types"
)

type fixedProvider struct {
	entities []*types.EntityRecord
}

func (p *fixedProvider) FetchAllEntities(ctx context.Context) ([]*types.EntityRecord, error) {
	return p.entities, nil
}

func (p *fixedProvider) FetchEntity(ctx context.Context, entityID string) (*types.EntityRecord, error) {
	for _, e := range p.entities {
		if e.EntityID == entityID {
			return e, nil
		}
	}
	return nil, io.ErrUnexpectedEOF
}

func newTestREPL() *REPL {
	provider := &fixedProvider{entities: []*types.EntityRecord{
		{
			EntityID:   "light.living_room",
			State:      "on",
			Attributes: map[string]interface{}{"friendly_name": "Living Room"},
		},
		{
			EntityID:   "sensor.outdoor_temp",
			State:      "18.2",
			Attributes: map[string]interface{}{"friendly_name": "Outdoor Temperature"},
		},
	}}
	resolver := resources.NewResolver(provider, logging.NewNoOpLogger())
	return NewREPL(resolver, logging.NewNoOpLogger())
}

func TestEvalCommands(t *testing.T) {
	r := newTestREPL()
	ctx := context.Background()

	tests := []struct {
		name     string
		input    string
		contains string
	}{
		{name: "entity", input: "entity light.living_room", contains: "# light.living_room"},
		{name: "detail", input: "detail light.living_room", contains: "(detailed)"},
		{name: "search", input: "search living", contains: "Search Results"},
		{name: "search with limit", input: "search temp 1", contains: "limit 1"},
		{name: "domain", input: "domain light", contains: "Light Entities"},
		{name: "summary", input: "summary sensor", contains: "Sensor Summary"},
		{name: "overview", input: "overview", contains: "Home Assistant Entities"},
		{name: "resource", input: "resource hass://entities", contains: "Home Assistant Entities"},
		{name: "help", input: "help", contains: "Commands:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := r.Eval(ctx, tt.input)
			require.NoError(t, err)
			assert.Contains(t, out, tt.contains)
		})
	}
}

func TestEvalErrors(t *testing.T) {
	r := newTestREPL()
	ctx := context.Background()

	_, err := r.Eval(ctx, "entity")
	assert.Error(t, err)

	_, err = r.Eval(ctx, "search living notanumber")
	assert.Error(t, err)

	_, err = r.Eval(ctx, "frobnicate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command")
}

func TestEvalQuit(t *testing.T) {
	r := newTestREPL()
	_, err := r.Eval(context.Background(), "quit")
	assert.Equal(t, io.EOF, err)
}

func TestStartLoopRunsAndExits(t *testing.T) {
	r := newTestREPL()
	var out bytes.Buffer
	r.SetIO(strings.NewReader("entity light.living_room\nquit\n"), &out)

	err := r.Start(context.Background())
	require.NoError(t, err)
	assert.Contains(t, out.String(), "light.living_room")
}

func TestHistoryRecordsCommands(t *testing.T) {
	r := newTestREPL()
	ctx := context.Background()

	_, err := r.Eval(ctx, "entity light.living_room")
	require.NoError(t, err)

	// Eval itself does not append; the loop does. Drive it via Start.
	var out bytes.Buffer
	r.SetIO(strings.NewReader("overview\nhistory\nquit\n"), &out)
	require.NoError(t, r.Start(ctx))
	assert.Contains(t, out.String(), "overview")
}
