package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"go-linkedin-extractor/internal/scraper"
)

var sample = []scraper.JobRecord{
	{ID: "1", Title: "Golang Developer", Company: "Acme Corp", Location: "Hà Nội, Vietnam", AdditionalInfo: "Promoted"},
	{ID: "2", Title: "Backend Engineer (Go)", Company: "Globex", Location: "Đà Nẵng, Vietnam", AdditionalInfo: "N/A"},
	{ID: "3", Title: "Frontend Developer", Company: "Acme Corp", Location: "Remote", AdditionalInfo: "Easy Apply"},
}

func ids(jobs []scraper.JobRecord) []string {
	var out []string
	for _, j := range jobs {
		out = append(out, j.ID)
	}
	return out
}

func TestJobs(t *testing.T) {
	tests := []struct {
		name     string
		criteria Criteria
		want     []string
	}{
		{"zero criteria keeps all", Criteria{}, []string{"1", "2", "3"}},
		{"query words all required", Criteria{Query: "developer acme"}, []string{"1", "3"}},
		{"query without accents", Criteria{Query: "ha noi"}, []string{"1"}},
		{"stroke letter", Criteria{Location: "da nang"}, []string{"2"}},
		{"company case insensitive", Criteria{Company: "ACME"}, []string{"1", "3"}},
		{"promoted only", Criteria{Promoted: true}, []string{"1"}},
		{"combined", Criteria{Company: "acme", Location: "remote"}, []string{"3"}},
		{"no match", Criteria{Query: "rust"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Jobs(sample, tt.criteria)))
		})
	}
}

func TestWithoutDetails(t *testing.T) {
	details := map[string]scraper.JobDetailRecord{
		"2":  {ID: "2"},
		"99": {ID: "99"},
	}
	assert.Equal(t, []string{"1", "3"}, ids(WithoutDetails(sample, details)))
	assert.Empty(t, WithoutDetails(nil, details))
}

func TestNormalizeText(t *testing.T) {
	assert.Equal(t, "thanh pho ho chi minh", normalizeText("Thành phố Hồ Chí Minh"))
	assert.Equal(t, "da nang", normalizeText("Đà Nẵng"))
}
