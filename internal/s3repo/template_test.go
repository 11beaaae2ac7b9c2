package s3repo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseTemplate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name             string
		pathFormat       string
		wantFormat       string
		wantPlaceholders []string
	}{
		{
			name:             "date prefix with ticker name",
			pathFormat:       "yyyymmdd/s/sss.csv.gz",
			wantFormat:       "{yyyymmdd}/{s}/{sss}.csv.gz",
			wantPlaceholders: []string{"yyyymmdd", "s", "sss"},
		},
		{
			name:             "compound zip extension stays intact",
			pathFormat:       "yyyymmdd/sss.csv.zip",
			wantFormat:       "{yyyymmdd}/{sss}.csv.zip",
			wantPlaceholders: []string{"yyyymmdd", "sss"},
		},
		{
			name:             "literal segments are left alone",
			pathFormat:       "data/yyyymmdd/trades.csv",
			wantFormat:       "data/{yyyymmdd}/trades.csv",
			wantPlaceholders: []string{"yyyymmdd"},
		},
		{
			name:             "placeholder only in the name",
			pathFormat:       "sss.csv",
			wantFormat:       "{sss}.csv",
			wantPlaceholders: []string{"sss"},
		},
		{
			name:             "placeholder as substring is not a placeholder",
			pathFormat:       "asset/tickers.csv",
			wantFormat:       "asset/tickers.csv",
			wantPlaceholders: nil,
		},
		{
			name:             "repeated placeholder is reported once",
			pathFormat:       "yyyy/yyyymmdd/yyyymmdd.csv",
			wantFormat:       "{yyyy}/{yyyymmdd}/{yyyymmdd}.csv",
			wantPlaceholders: []string{"yyyy", "yyyymmdd"},
		},
		{
			name:             "bucket style name without extension",
			pathFormat:       "us-equity-taq-yyyy",
			wantFormat:       "us-equity-taq-yyyy",
			wantPlaceholders: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			template, err := ParseTemplate(tt.pathFormat)
			require.NoError(t, err)
			assert.Equal(t, tt.wantFormat, template.Format())
			if tt.wantPlaceholders == nil {
				assert.Empty(t, template.Placeholders())
			} else {
				assert.Equal(t, tt.wantPlaceholders, template.Placeholders())
			}
		})
	}
}

func TestParseTemplate_Empty(t *testing.T) {
	t.Parallel()

	_, err := ParseTemplate("")
	assert.Error(t, err)
}

func TestTemplate_Expand(t *testing.T) {
	t.Parallel()

	t.Run("date range times symbols, date major", func(t *testing.T) {
		t.Parallel()
		template, err := ParseTemplate("yyyymmdd/s/sss.csv.gz")
		require.NoError(t, err)

		keys, err := template.Expand(Filters{
			StartDate: date(2024, time.March, 14),
			EndDate:   date(2024, time.March, 15),
			Symbols:   []string{"ABC", "DE"},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{
			"20240314/A/ABC.csv.gz",
			"20240314/D/DE.csv.gz",
			"20240315/A/ABC.csv.gz",
			"20240315/D/DE.csv.gz",
		}, keys)
	})

	t.Run("single day range", func(t *testing.T) {
		t.Parallel()
		template, err := ParseTemplate("yyyymmdd/sss.csv")
		require.NoError(t, err)

		keys, err := template.Expand(Filters{
			StartDate: date(2024, time.January, 2),
			EndDate:   date(2024, time.January, 2),
			Symbols:   []string{"ABC"},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"20240102/ABC.csv"}, keys)
	})

	t.Run("year placeholder deduplicates within a year", func(t *testing.T) {
		t.Parallel()
		template, err := ParseTemplate("yyyy/trades.csv")
		require.NoError(t, err)

		keys, err := template.Expand(Filters{
			StartDate: date(2023, time.December, 30),
			EndDate:   date(2024, time.January, 2),
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"2023/trades.csv", "2024/trades.csv"}, keys)
	})

	t.Run("no placeholders yields the literal key", func(t *testing.T) {
		t.Parallel()
		template, err := ParseTemplate("static/trades.csv")
		require.NoError(t, err)

		keys, err := template.Expand(Filters{})
		require.NoError(t, err)
		assert.Equal(t, []string{"static/trades.csv"}, keys)
	})

	t.Run("missing date filter", func(t *testing.T) {
		t.Parallel()
		template, err := ParseTemplate("yyyymmdd/trades.csv")
		require.NoError(t, err)

		_, err = template.Expand(Filters{Symbols: []string{"ABC"}})
		assert.Error(t, err)
	})

	t.Run("missing symbol filter", func(t *testing.T) {
		t.Parallel()
		template, err := ParseTemplate("yyyymmdd/sss.csv")
		require.NoError(t, err)

		_, err = template.Expand(Filters{
			StartDate: date(2024, time.March, 14),
			EndDate:   date(2024, time.March, 14),
		})
		assert.Error(t, err)
	})

	t.Run("inverted date range", func(t *testing.T) {
		t.Parallel()
		template, err := ParseTemplate("yyyymmdd/trades.csv")
		require.NoError(t, err)

		_, err = template.Expand(Filters{
			StartDate: date(2024, time.March, 15),
			EndDate:   date(2024, time.March, 14),
		})
		assert.Error(t, err)
	})

	t.Run("contract placeholders cannot be derived from filters", func(t *testing.T) {
		t.Parallel()
		template, err := ParseTemplate("expdate/ssmy.csv")
		require.NoError(t, err)

		_, err = template.Expand(Filters{
			StartDate: date(2024, time.March, 14),
			EndDate:   date(2024, time.March, 14),
			Symbols:   []string{"ES"},
		})
		assert.Error(t, err)
	})
}
