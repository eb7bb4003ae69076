package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const nationalPage = `Presidential Election Winner 2024
$2,345,678,901 Vol.
Nov 5, 2024
Donald Trump 52.3%
Kamala Harris 46.9%`

const statePage = `Pennsylvania Presidential Election Winner
Outcome
Republican
$12,345,678 Vol.
55%
Buy Yes
Democrat
 $9,876,543 Vol.
 45.5%
Buy Yes`

func TestParseNationalPage(t *testing.T) {
	q, err := ParseNationalPage(nationalPage)
	require.NoError(t, err)
	assert.Equal(t, 2_345_678_901.0, q.TotalAmount)
	assert.Equal(t, 52.3, q.RepublicanOdds)
}

func TestParseNationalPage_Missing(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "no volume", content: "Donald Trump 52.3%"},
		{name: "no candidate", content: "$100 Vol.\nKamala Harris 46.9%"},
		{name: "empty", content: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseNationalPage(tt.content)
			assert.Error(t, err)
		})
	}
}

func TestParseStatePage(t *testing.T) {
	q, err := ParseStatePage(statePage)
	require.NoError(t, err)

	assert.Equal(t, "Republican", q.Republican.Party)
	assert.Equal(t, 12_345_678.0, q.Republican.Volume)
	assert.Equal(t, 55.0, q.Republican.Odds)
	assert.Equal(t, 9_876_543.0, q.Democrat.Volume)
	assert.Equal(t, 45.5, q.Democrat.Odds)
	assert.Equal(t, 22_222_221.0, q.TotalAmount())
}

func TestParseStatePage_WindowsNewlines(t *testing.T) {
	q, err := ParseStatePage("Republican\r\n$10 Vol.\r\n60%\r\nDemocrat\r\n$5 Vol.\r\n40%")
	require.NoError(t, err)
	assert.Equal(t, 15.0, q.TotalAmount())
}

func TestParseStatePage_MissingParty(t *testing.T) {
	_, err := ParseStatePage("Republican\n$10 Vol.\n60%")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Democrat")
}
