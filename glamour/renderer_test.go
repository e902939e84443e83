package glamour_test

import (
	"testing"

	"github.com/fwojciec/docchat/glamour"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderer_Render(t *testing.T) {
	t.Parallel()

	t.Run("renders paragraph text", func(t *testing.T) {
		t.Parallel()

		r, err := glamour.NewRenderer(glamour.WithStyle("notty"))
		require.NoError(t, err)

		out, err := r.Render("LangChain supports **agents**.")

		require.NoError(t, err)
		assert.Contains(t, out, "LangChain supports")
		assert.Contains(t, out, "agents")
	})

	t.Run("trims surrounding newlines", func(t *testing.T) {
		t.Parallel()

		r, err := glamour.NewRenderer(glamour.WithStyle("notty"))
		require.NoError(t, err)

		out, err := r.Render("Chains compose calls.")

		require.NoError(t, err)
		assert.NotEqual(t, byte('\n'), out[0])
		assert.NotEqual(t, byte('\n'), out[len(out)-1])
	})

	t.Run("keeps code block contents", func(t *testing.T) {
		t.Parallel()

		r, err := glamour.NewRenderer(glamour.WithStyle("notty"), glamour.WithWordWrap(0))
		require.NoError(t, err)

		out, err := r.Render("```python\nchain = prompt | model\n```")

		require.NoError(t, err)
		assert.Contains(t, out, "chain = prompt | model")
	})
}
