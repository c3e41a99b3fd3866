package structure

import (
	"fmt"
	"strings"

	"github.com/joseph-ayodele/receipt-recognizer/internal/common"
)

// Table confidence blends row homogeneity with per-row confidence; runs of
// three or more rows earn a bonus.
const (
	tableHomogeneityWeight = 0.4
	tableRowConfWeight     = 0.4
	tableRowCountBonus     = 0.2
	tableBonusMinRows      = 3
)

// Analyze classifies every non-blank line of text and groups contiguous
// tabular runs into tables. Empty or whitespace-only text is an error;
// callers fall back to unstructured extraction.
func Analyze(text string) (Analysis, error) {
	if strings.TrimSpace(text) == "" {
		return Analysis{}, fmt.Errorf("%w: no text to analyze", common.ErrStructureAnalysis)
	}

	var a Analysis
	for i, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		el := Classify(i, line)
		a.Elements = append(a.Elements, el)
		switch el.Role {
		case RolePricedItem:
			a.Items = append(a.Items, el)
		case RoleBarePrice:
			a.Prices = append(a.Prices, el)
		case RoleListItem:
			a.Lists = append(a.Lists, el)
		case RoleUnclassified:
			a.Mixed = append(a.Mixed, el)
		}
	}
	a.Tables = groupTables(a.Elements)
	return a, nil
}

// groupTables collects maximal contiguous runs of tabular lines. A run
// becomes a table only when it has at least two rows and at least one
// TableRow; priced items inside a run ride along as table rows.
func groupTables(elements []Element) []Table {
	var tables []Table
	var run []Element
	flush := func() {
		if t, ok := buildTable(run); ok {
			tables = append(tables, t)
		}
		run = nil
	}
	for _, el := range elements {
		if el.Role == RoleTableRow || el.Role == RolePricedItem {
			run = append(run, el)
			continue
		}
		flush()
	}
	flush()
	return tables
}

func buildTable(run []Element) (Table, bool) {
	if len(run) < 2 {
		return Table{}, false
	}
	hasTableRow := false
	for _, el := range run {
		if el.Role == RoleTableRow {
			hasTableRow = true
			break
		}
	}
	if !hasTableRow {
		return Table{}, false
	}

	cols := columnMode(run)
	return Table{
		Rows:        run,
		StartLine:   run[0].LineIndex,
		EndLine:     run[len(run)-1].LineIndex,
		ColumnCount: cols,
		Confidence:  tableConfidence(run, cols),
	}, true
}

// columnMode is the most frequent token count across rows; ties resolve
// to the smaller count.
func columnMode(rows []Element) int {
	freq := make(map[int]int)
	for _, r := range rows {
		freq[len(strings.Fields(r.Raw))]++
	}
	mode, best := 0, 0
	for count, n := range freq {
		if n > best || (n == best && (mode == 0 || count < mode)) {
			mode, best = count, n
		}
	}
	return mode
}

func tableConfidence(rows []Element, cols int) float64 {
	matching := 0
	var confSum float64
	for _, r := range rows {
		if len(strings.Fields(r.Raw)) == cols {
			matching++
		}
		confSum += r.RoleConfidence
	}
	homogeneity := float64(matching) / float64(len(rows))
	meanConf := confSum / float64(len(rows))

	conf := tableHomogeneityWeight*homogeneity + tableRowConfWeight*meanConf
	if len(rows) >= tableBonusMinRows {
		conf += tableRowCountBonus
	}
	if conf > 1 {
		conf = 1
	}
	return conf
}
