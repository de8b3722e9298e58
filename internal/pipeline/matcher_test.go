package pipeline

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/replyloop-ai/messenger-platform/internal/model"
)

func TestMatchKeyword_FirstMatchInOrder(t *testing.T) {
	t.Parallel()

	// Rules arrive pre-sorted: priority descending, then creation order.
	rules := []model.KeywordRule{
		{ID: 3, Keyword: "prix", Reply: "Nos tarifs sont sur le site.", Priority: 5},
		{ID: 1, Keyword: "bonjour", Reply: "Bonjour !", Priority: 1},
		{ID: 2, Keyword: "horaires", Reply: "Ouvert 9h-18h.", Priority: 1},
	}

	rule, ok := MatchKeyword("Bonjour, quel est le prix ?", rules)
	require.True(t, ok)
	require.Equal(t, int64(3), rule.ID)
	require.Equal(t, "Nos tarifs sont sur le site.", rule.Reply)
}

func TestMatchKeyword_CaseInsensitive(t *testing.T) {
	t.Parallel()

	rules := []model.KeywordRule{
		{ID: 1, Keyword: "Horaires", Reply: "Ouvert 9h-18h."},
	}

	rule, ok := MatchKeyword("vos HORAIRES svp", rules)
	require.True(t, ok)
	require.Equal(t, int64(1), rule.ID)
}

func TestMatchKeyword_SubstringNotWholeWord(t *testing.T) {
	t.Parallel()

	rules := []model.KeywordRule{
		{ID: 1, Keyword: "prix", Reply: "Tarifs."},
	}

	_, ok := MatchKeyword("le grand-prix approche", rules)
	require.True(t, ok)
}

func TestMatchKeyword_NoMatch(t *testing.T) {
	t.Parallel()

	rules := []model.KeywordRule{
		{ID: 1, Keyword: "prix", Reply: "Tarifs."},
		{ID: 2, Keyword: "horaires", Reply: "Ouvert 9h-18h."},
	}

	_, ok := MatchKeyword("merci beaucoup", rules)
	require.False(t, ok)
}

func TestMatchKeyword_SkipsEmptyKeywords(t *testing.T) {
	t.Parallel()

	rules := []model.KeywordRule{
		{ID: 1, Keyword: "", Reply: "never"},
		{ID: 2, Keyword: "aide", Reply: "On arrive."},
	}

	rule, ok := MatchKeyword("besoin d'aide", rules)
	require.True(t, ok)
	require.Equal(t, int64(2), rule.ID)
}

func TestMatchKeyword_Deterministic(t *testing.T) {
	t.Parallel()

	rules := []model.KeywordRule{
		{ID: 1, Keyword: "prix", Reply: "a", Priority: 2},
		{ID: 2, Keyword: "prix", Reply: "b", Priority: 2},
	}

	for i := 0; i < 100; i++ {
		rule, ok := MatchKeyword("prix", rules)
		require.True(t, ok)
		require.Equal(t, int64(1), rule.ID)
	}
}

func TestMatchKeyword_EmptyRules(t *testing.T) {
	t.Parallel()

	_, ok := MatchKeyword("bonjour", nil)
	require.False(t, ok)
}
