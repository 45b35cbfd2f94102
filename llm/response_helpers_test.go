package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFirstChoice(t *testing.T) {
	t.Run("nil response", func(t *testing.T) {
		_, err := FirstChoice(nil)
		assert.Error(t, err)
	})

	t.Run("empty choices", func(t *testing.T) {
		_, err := FirstChoice(&ChatResponse{})
		assert.Error(t, err)
	})

	t.Run("first of several", func(t *testing.T) {
		choice, err := FirstChoice(&ChatResponse{Choices: []ChatChoice{
			{Message: Message{Content: "first"}},
			{Message: Message{Content: "second"}},
		}})
		require.NoError(t, err)
		assert.Equal(t, "first", choice.Message.Content)
	})
}

func TestContentOrEmpty(t *testing.T) {
	cases := []struct {
		name string
		resp *ChatResponse
		want string
	}{
		{"nil response", nil, ""},
		{"no choices", &ChatResponse{}, ""},
		{"blank content", &ChatResponse{Choices: []ChatChoice{{Message: Message{Content: "   \n"}}}}, ""},
		{"trimmed content", &ChatResponse{Choices: []ChatChoice{{Message: Message{Content: "  hello  "}}}}, "hello"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ContentOrEmpty(tc.resp))
		})
	}
}
