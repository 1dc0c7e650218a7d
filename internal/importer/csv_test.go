package importer

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_EnglishHeaders(t *testing.T) {
	input := "Date,Description,Amount\n" +
		"2025-03-10,NETFLIX.COM,-55.90\n" +
		"2025-03-11,PAYROLL,4200.00\n"

	st, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, st.Rows, 2)
	assert.Equal(t, 2, st.TotalRows)
	assert.Equal(t, Row{Date: "2025-03-10", Description: "NETFLIX.COM", Amount: -55.90}, st.Rows[0])
}

func TestParse_PortugueseHeadersAndAmounts(t *testing.T) {
	input := "Data,Lançamento,Valor\n" +
		"10/03/2025,SUPERMERCADO PÃO,\"R$ -1.234,56\"\n"

	st, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, st.Rows, 1)
	assert.Equal(t, "SUPERMERCADO PÃO", st.Rows[0].Description)
	assert.Equal(t, -1234.56, st.Rows[0].Amount)
}

func TestParse_AccentedDescriptionHeader(t *testing.T) {
	input := "Data,Descrição,Valor\n" +
		"10/03/2025,FARMACIA,-42.10\n"

	st, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, st.Rows, 1)
}

func TestParse_SkipsUnusableRows(t *testing.T) {
	input := "Date,Description,Amount\n" +
		"2025-03-10,OK,-10.00\n" +
		",missing date,-10.00\n" +
		"2025-03-12,bad amount,n/a\n" +
		"2025-03-13,,\n"

	st, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, st.Rows, 1)
	assert.Equal(t, "OK", st.Rows[0].Description)
}

func TestParse_MissingColumn(t *testing.T) {
	_, err := Parse(strings.NewReader("Date,Description\n2025-03-10,x\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "amount")
}

func TestParse_EmptyFile(t *testing.T) {
	st, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, st.Rows)
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"-52.00", -52},
		{"R$ 1.234,56", 1234.56},
		{"$1,200.00", 1200},
		{"42", 42},
		{"-0,99", -0.99},
	}
	for _, tt := range tests {
		got, err := ParseAmount(tt.raw)
		require.NoError(t, err, tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
	}

	_, err := ParseAmount("n/a")
	assert.Error(t, err)
}

func TestParseDate(t *testing.T) {
	want := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)

	for _, raw := range []string{"2025-03-10", "10/03/2025"} {
		got, err := ParseDate(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	_, err := ParseDate("tenth of march")
	assert.Error(t, err)
}
