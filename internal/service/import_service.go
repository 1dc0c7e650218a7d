package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/granaflow/backend/internal/categorize"
	"github.com/granaflow/backend/internal/forecast"
	"github.com/granaflow/backend/internal/importer"
	"github.com/granaflow/backend/internal/model"
	"github.com/granaflow/backend/internal/store"
)

// ImportService turns uploaded CSV statements into stored expenses:
// parse, categorize each row, resolve category IDs, bulk insert. Forecast
// matches are surfaced in preview so the user can merge before committing.
type ImportService struct {
	store      store.Store
	categories *CategoryService
	oracle     categorize.Oracle
	reconcile  *ReconcileService
	now        func() time.Time
}

func NewImportService(st store.Store, categories *CategoryService, oracle categorize.Oracle, reconcile *ReconcileService) *ImportService {
	return &ImportService{
		store:      st,
		categories: categories,
		oracle:     oracle,
		reconcile:  reconcile,
		now:        time.Now,
	}
}

// Preview parses a statement and reports which rows have pending
// forecast candidates. Nothing is written.
func (s *ImportService) Preview(ctx context.Context, fileContent string) (*importer.Statement, []RowMatches, error) {
	st, err := importer.Parse(strings.NewReader(fileContent))
	if err != nil {
		return nil, nil, Validationf("parsing statement: %v", err)
	}
	matches, err := s.reconcile.CheckBatch(ctx, st.Rows)
	if err != nil {
		return nil, nil, err
	}
	return st, matches, nil
}

// Import parses, categorizes and stores a statement. Rows whose date
// cannot be parsed are skipped with a warning; an oracle failure on a
// row degrades that row to Other/Uncategorized instead of failing the
// whole import. Returns the number of expenses created.
func (s *ImportService) Import(ctx context.Context, userID, fileContent string, statementMonth, statementYear int) (int, error) {
	st, err := importer.Parse(strings.NewReader(fileContent))
	if err != nil {
		return 0, Validationf("parsing statement: %v", err)
	}
	if len(st.Rows) == 0 {
		return 0, Validationf("no usable rows found in statement")
	}

	idx, err := s.categories.Index(ctx)
	if err != nil {
		return 0, err
	}

	now := s.now().UTC()
	expenses := make([]*model.Expense, 0, len(st.Rows))
	for i, row := range st.Rows {
		date, err := importer.ParseDate(row.Date)
		if err != nil {
			slog.Warn("skipping row with unparseable date", "row", i, "date", row.Date)
			continue
		}
		result := s.categorizeRow(ctx, row)
		catID, subID, err := idx.Resolve(result.Category, result.Subcategory)
		if err != nil {
			return 0, fmt.Errorf("resolving category for row %d: %w", i, err)
		}
		e := &model.Expense{
			UserID:             userID,
			Description:        row.Description,
			Amount:             row.Amount,
			Date:               forecast.MidnightUTC(date),
			CategoryID:         catID,
			SubcategoryID:      subID,
			CategoryConfidence: result.Confidence,
			MerchantName:       result.MerchantName,
			StatementMonth:     statementMonth,
			StatementYear:      statementYear,
			RawSource:          fmt.Sprintf("%s | %s | %.2f", row.Date, row.Description, row.Amount),
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		if result.IsRecurring || result.Notes != "" {
			e.Insights = &model.Insights{IsRecurring: result.IsRecurring, Notes: result.Notes}
		}
		expenses = append(expenses, e)
	}
	if len(expenses) == 0 {
		return 0, Validationf("no usable rows found in statement")
	}
	if err := s.store.InsertExpenses(ctx, expenses); err != nil {
		return 0, fmt.Errorf("inserting imported expenses: %w", err)
	}
	expensesImportedTotal.Add(float64(len(expenses)))
	slog.Info("statement imported",
		"rows", st.TotalRows,
		"imported", len(expenses),
		"statementMonth", statementMonth,
		"statementYear", statementYear)
	return len(expenses), nil
}

// categorizeRow asks the oracle to label one row. Retry policy belongs to
// the oracle implementation; wrapping the call in another retry layer here
// would multiply HTTP attempts per failing row.
func (s *ImportService) categorizeRow(ctx context.Context, row importer.Row) categorize.Result {
	result, err := s.oracle.Categorize(ctx, row.Description, row.Amount)
	if err != nil {
		slog.Warn("categorization failed, using fallback",
			"description", row.Description,
			"error", err)
		return categorize.Fallback()
	}
	return result
}
