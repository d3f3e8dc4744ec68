package providers

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

type fakeModel struct {
	reply string
	err   error
	got   []llms.MessageContent
}

func (m *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	m.got = messages
	if m.err != nil {
		return nil, m.err
	}
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: m.reply}},
	}, nil
}

func (m *fakeModel) Call(ctx context.Context, prompt string, _ ...llms.CallOption) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.reply, nil
}

func TestLLMProvider_GenerateText(t *testing.T) {
	model := &fakeModel{reply: "  A lighthouse at dusk, 35mm, volumetric fog.  "}
	p := NewLLMProviderWithModel(model)

	out, err := p.GenerateText(context.Background(), "lighthouse", nil)
	require.NoError(t, err)
	assert.Equal(t, "A lighthouse at dusk, 35mm, volumetric fog.", out)

	require.Len(t, model.got, 2)
	assert.Equal(t, llms.ChatMessageTypeSystem, model.got[0].Role)
	assert.Equal(t, llms.ChatMessageTypeHuman, model.got[1].Role)
}

func TestLLMProvider_ModelError(t *testing.T) {
	p := NewLLMProviderWithModel(&fakeModel{err: errors.New("rate limited")})

	_, err := p.GenerateText(context.Background(), "x", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "llm call failed")
}

func TestLLMProvider_EmptyReply(t *testing.T) {
	p := NewLLMProviderWithModel(&fakeModel{reply: "   "})

	_, err := p.GenerateText(context.Background(), "x", nil)
	require.Error(t, err)
}
