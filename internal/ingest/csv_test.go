package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseReviews(t *testing.T) {
	csv := "WSID,product_id,product_name,review_title,review_text,rating\n" +
		"s1,p1,Widget,Great,Works well,5\n" +
		"s1,p2,Gadget,Meh,Stopped after a week,2\n"

	reviews, err := ParseReviews(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, reviews, 2)

	require.Equal(t, "s1", reviews[0].WorkspaceID)
	require.Equal(t, "p1", reviews[0].ProductID)
	require.Equal(t, "Widget", reviews[0].ProductName)
	require.Equal(t, "Works well", reviews[0].ReviewText)
	require.Equal(t, 5, reviews[0].Rating)
	require.False(t, reviews[0].Embedded)
	require.NotEmpty(t, reviews[0].ReviewID)
	require.NotEqual(t, reviews[0].ReviewID, reviews[1].ReviewID)
}

func TestParseReviewsStripsBOM(t *testing.T) {
	csv := "\ufeffWSID,product_id,review_text\ns1,p1,fine\n"

	reviews, err := ParseReviews(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	require.Equal(t, "s1", reviews[0].WorkspaceID)
}

func TestParseReviewsMissingColumn(t *testing.T) {
	csv := "WSID,review_text\ns1,fine\n"

	_, err := ParseReviews(strings.NewReader(csv))
	require.Error(t, err)
	require.Contains(t, err.Error(), "product_id")
}

func TestParseReviewsBadRatingDefaultsToZero(t *testing.T) {
	csv := "WSID,product_id,review_text,rating\ns1,p1,fine,not-a-number\n"

	reviews, err := ParseReviews(strings.NewReader(csv))
	require.NoError(t, err)
	require.Equal(t, 0, reviews[0].Rating)
}
