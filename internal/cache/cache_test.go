package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/BuseDenizH/EssayEval-NLP/internal/models"
	"github.com/BuseDenizH/EssayEval-NLP/internal/scoring"
)

const scoredBody = `{"results": {
	"deberta": {"overall": 6, "criteria": {"task_response": 6, "coherence": 6, "lexical": 6, "grammar": 6}},
	"mpnet": {"overall": 7, "criteria": {"task_response": 7, "coherence": 7, "lexical": 7, "grammar": 7}}
}}`

const partialBody = `{"results": {
	"mpnet": {"overall": 7, "criteria": {"task_response": 7, "coherence": 7, "lexical": 7, "grammar": 7}},
	"deberta": {"error": "model not loaded"}
}}`

func decode(t *testing.T, body string) *scoring.PredictResponse {
	t.Helper()
	resp, err := scoring.DecodeResponse([]byte(body))
	require.NoError(t, err)
	return resp
}

func request(essay string, ids ...models.ModelID) *scoring.PredictRequest {
	return &scoring.PredictRequest{Essay: essay, Models: ids}
}

func TestKey(t *testing.T) {
	key1, err := Key(request("essay", models.ModelMPNet, models.ModelDeBERTa))
	require.NoError(t, err)
	assert.Len(t, key1, 64) // SHA256 hex is 64 chars

	key2, err := Key(request("essay", models.ModelMPNet, models.ModelDeBERTa))
	require.NoError(t, err)
	assert.Equal(t, key1, key2)

	tests := []struct {
		name string
		req  *scoring.PredictRequest
	}{
		{"different essay", request("essay!", models.ModelMPNet, models.ModelDeBERTa)},
		{"different model order", request("essay", models.ModelDeBERTa, models.ModelMPNet)},
		{"fewer models", request("essay", models.ModelMPNet)},
		{"delimiter collision", request("essay\x00mpnet", models.ModelDeBERTa)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := Key(tt.req)
			require.NoError(t, err)
			assert.NotEqual(t, key1, key)
		})
	}
}

func TestGetPut_PreservesOrder(t *testing.T) {
	c := New(t.TempDir())

	_, ok := c.Get("missing")
	assert.False(t, ok)

	require.NoError(t, c.Put("k", decode(t, scoredBody)))
	got, ok := c.Get("k")
	require.True(t, ok)

	var keys []string
	for pair := got.Results.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	assert.Equal(t, []string{"deberta", "mpnet"}, keys)
}

func TestGet_CorruptEntryIsMiss(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte(`{"detail":"nope"}`), 0644))

	_, ok := New(dir).Get("bad")
	assert.False(t, ok)
}

func TestDisabledCache(t *testing.T) {
	c := New("")
	require.NoError(t, c.Put("k", decode(t, scoredBody)))
	_, ok := c.Get("k")
	assert.False(t, ok)
	assert.NoError(t, c.Clear())
}

func TestClear(t *testing.T) {
	t.Run("removes cache files", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "cache")
		c := New(dir)
		require.NoError(t, c.Put("k", decode(t, scoredBody)))

		require.NoError(t, c.Clear())
		_, err := os.Stat(dir)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("missing directory", func(t *testing.T) {
		assert.NoError(t, New(filepath.Join(t.TempDir(), "absent")).Clear())
	})

	t.Run("refuses foreign files", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "essay.txt"), []byte("x"), 0644))

		err := New(dir).Clear()
		assert.ErrorContains(t, err, "non-cache files")
	})

	t.Run("refuses subdirectories", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0755))

		err := New(dir).Clear()
		assert.ErrorContains(t, err, "subdirectories")
	})
}

func TestClient_MissThenHit(t *testing.T) {
	ctrl := gomock.NewController(t)
	next := scoring.NewMockClient(ctrl)
	req := request("essay", models.ModelDeBERTa, models.ModelMPNet)

	next.EXPECT().Predict(gomock.Any(), req).Return(decode(t, scoredBody), nil).Times(1)

	client := NewClient(next, New(t.TempDir()), nil)
	first, err := client.Predict(context.Background(), req)
	require.NoError(t, err)
	second, err := client.Predict(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first.Results.Len(), second.Results.Len())
}

func TestClient_PartialResponseNotCached(t *testing.T) {
	ctrl := gomock.NewController(t)
	next := scoring.NewMockClient(ctrl)
	req := request("essay", models.ModelMPNet, models.ModelDeBERTa)

	next.EXPECT().Predict(gomock.Any(), req).Return(decode(t, partialBody), nil).Times(2)

	client := NewClient(next, New(t.TempDir()), nil)
	for range 2 {
		_, err := client.Predict(context.Background(), req)
		require.NoError(t, err)
	}
}

func TestClient_ErrorPassesThrough(t *testing.T) {
	ctrl := gomock.NewController(t)
	next := scoring.NewMockClient(ctrl)
	req := request("essay", models.ModelMPNet)
	transport := &models.TransportError{Op: "request", Err: errors.New("connection refused")}

	next.EXPECT().Predict(gomock.Any(), req).Return(nil, transport).Times(2)

	client := NewClient(next, New(t.TempDir()), nil)
	for range 2 {
		_, err := client.Predict(context.Background(), req)
		assert.ErrorIs(t, err, transport)
	}
}

func TestConcurrentAccess(t *testing.T) {
	c := New(t.TempDir())
	resp := decode(t, scoredBody)

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			key, err := Key(request(string(rune('a' + i))))
			assert.NoError(t, err)
			assert.NoError(t, c.Put(key, resp))
			_, ok := c.Get(key)
			assert.True(t, ok)
		}()
	}
	wg.Wait()
}
