package commands_test

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/billsplit-dev/billsplit/internal/commands"
	"github.com/billsplit-dev/billsplit/internal/ledger"
	"github.com/billsplit-dev/billsplit/internal/settle"
	"github.com/billsplit-dev/billsplit/internal/snapshot"
)

// workspace switches to an empty directory so the default config location
// resolves inside it.
func workspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("BILLSPLIT_CONFIG", "")
	t.Setenv("LOG_LEVEL", "")
	return dir
}

func runBillsplit(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	root := commands.NewRootCommand()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, stderr, err := runBillsplit(t, "", args...)
	require.NoError(t, err, "billsplit %s\n%s", strings.Join(args, " "), stderr)
	return out
}

func readSettlementFile(t *testing.T, path string) ([]string, []bool) {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	s, err := snapshot.DecodeSettlement(f)
	require.NoError(t, err)
	flat := make([]string, len(s.Transfers))
	settled := make([]bool, len(s.Transfers))
	for i, tr := range s.Transfers {
		flat[i] = tr.From + ">" + tr.To + ":" + tr.Amount.StringFixed(2)
		settled[i] = tr.Settled
	}
	return flat, settled
}

func TestInit_WritesConfig(t *testing.T) {
	dir := workspace(t)

	out := mustRun(t, "init", "project", "--symbol", "€")
	path := filepath.Join(dir, "project", "billsplit.yaml")
	assert.Contains(t, out, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "strict: true")
	assert.Contains(t, string(data), "ids: sequential")

	_, _, err = runBillsplit(t, "", "init", "project")
	assert.ErrorContains(t, err, "already exists")

	mustRun(t, "init", "project", "--force", "--lenient")
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "strict: false")

	_, _, err = runBillsplit(t, "", "init", "other", "--ids", "snowflake")
	assert.ErrorContains(t, err, "unknown ID style")
}

func TestDinnerScenario(t *testing.T) {
	workspace(t)

	mustRun(t, "bill", "new", "dinner.json", "--name", "Dinner out", "--people", "Ann,Ben,Cat")
	mustRun(t, "bill", "item", "add", "dinner.json", "--name", "Dinner", "--price", "90", "--assign", "all")

	show := mustRun(t, "bill", "show", "dinner.json")
	assert.Contains(t, show, "Dinner out (b-001)")
	assert.Contains(t, show, "Total: $90.00")
	assert.Regexp(t, regexp.MustCompile(`p-002\s+Ben\s+\$30\.00`), show)

	out := mustRun(t, "settle", "dinner.json", "--paid", "ann=90")
	assert.Regexp(t, regexp.MustCompile(`1\s+Ben\s+Ann\s+\$30\.00\s+pending`), out)
	assert.Regexp(t, regexp.MustCompile(`2\s+Cat\s+Ann\s+\$30\.00\s+pending`), out)
	assert.Regexp(t, regexp.MustCompile(`Ann\s+\$90\.00\s+\$30\.00\s+\+\$60\.00`), out)
	assert.Contains(t, out, "Total: $60.00 (settled $0.00, pending $60.00)")

	mustRun(t, "settle", "dinner.json", "--paid", "p-001=90", "--json", "--out", "settlement.json", "--name", "Friday")
	transfers, settled := readSettlementFile(t, "settlement.json")
	assert.Equal(t, []string{"p-002>p-001:30.00", "p-003>p-001:30.00"}, transfers)
	assert.Equal(t, []bool{false, false}, settled)

	out = mustRun(t, "paid", "settlement.json", "2")
	assert.Contains(t, out, "#2 Cat -> Ann $30.00: settled")
	_, settled = readSettlementFile(t, "settlement.json")
	assert.Equal(t, []bool{false, true}, settled)

	_, _, err := runBillsplit(t, "", "paid", "settlement.json", "3")
	assert.ErrorContains(t, err, "transfer index out of range")
}

func TestSettleConsumptionCSV(t *testing.T) {
	workspace(t)

	mustRun(t, "bill", "new", "lunch.json", "--people", "Ann,Ben,Cat")
	mustRun(t, "bill", "item", "add", "lunch.json", "--name", "Steak", "--price", "40", "--assign", "Ann")
	mustRun(t, "bill", "item", "add", "lunch.json", "--name", "Salad", "--price", "10", "--qty", "2", "--assign", "Ben,Cat")

	out := mustRun(t, "settle", "lunch.json", "--csv")
	assert.Equal(t, strings.Join([]string{
		"from,from_name,to,to_name,amount,settled",
		"p-001,Ann,p-002,Ben,10.00,false",
		"p-001,Ann,p-003,Cat,10.00,false",
		"",
	}, "\n"), out)
}

func TestSettleStrictness(t *testing.T) {
	workspace(t)

	mustRun(t, "bill", "new", "bill.json", "--people", "Ann,Ben")
	mustRun(t, "bill", "item", "add", "bill.json", "--name", "Pizza", "--price", "20", "--assign", "all")

	_, _, err := runBillsplit(t, "", "settle", "bill.json", "--paid", "Ann=25")
	require.Error(t, err)
	assert.ErrorIs(t, err, settle.ErrConservationViolation)
	assert.ErrorContains(t, err, "residual 5.00")

	mustRun(t, "init", "--lenient")
	out, stderr, err := runBillsplit(t, "", "settle", "bill.json", "--paid", "Ann=25")
	require.NoError(t, err)
	assert.Contains(t, stderr, "balances do not sum to zero")
	assert.Regexp(t, regexp.MustCompile(`1\s+Ben\s+Ann\s+\$10\.00`), out)
}

func TestSettleRefusesIncompleteBills(t *testing.T) {
	workspace(t)

	mustRun(t, "bill", "new", "solo.json", "--people", "Ann")
	_, _, err := runBillsplit(t, "", "settle", "solo.json")
	assert.ErrorIs(t, err, settle.ErrTooFewParticipants)

	mustRun(t, "bill", "person", "add", "solo.json", "Ben")
	_, _, err = runBillsplit(t, "", "settle", "solo.json")
	assert.ErrorIs(t, err, ledger.ErrNoItems)
}

func TestItemValidation(t *testing.T) {
	workspace(t)
	mustRun(t, "bill", "new", "b.json", "--people", "Ann")

	_, _, err := runBillsplit(t, "", "bill", "item", "add", "b.json", "--name", "Air", "--price", "0")
	assert.ErrorIs(t, err, ledger.ErrNonPositivePrice)

	_, _, err = runBillsplit(t, "", "bill", "item", "add", "b.json", "--name", "Pie", "--price", "3", "--assign", "Zed")
	assert.ErrorIs(t, err, ledger.ErrUnknownParticipant)

	_, _, err = runBillsplit(t, "", "bill", "item", "add", "b.json", "--name", "Pie", "--price", "abc")
	assert.ErrorContains(t, err, "--price")

	_, _, err = runBillsplit(t, "", "bill", "person", "add", "b.json", " ")
	assert.ErrorIs(t, err, ledger.ErrEmptyName)

	show := mustRun(t, "bill", "show", "b.json")
	assert.Contains(t, show, "Total: $0.00")
}

func TestSubCentPriceSurvivesSave(t *testing.T) {
	workspace(t)

	mustRun(t, "bill", "new", "b.json", "--people", "Ann")
	mustRun(t, "bill", "item", "add", "b.json", "--name", "Olives", "--price", "3.333", "--qty", "3", "--assign", "Ann")

	f, err := os.Open("b.json")
	require.NoError(t, err)
	defer f.Close()
	bill, err := snapshot.DecodeBill(f)
	require.NoError(t, err)
	require.Len(t, bill.Items, 1)
	assert.Equal(t, "3.333", bill.Items[0].UnitPrice.String())
	assert.Equal(t, "9.999", bill.Items[0].Price.String())
}

func TestPersonRemovalCascades(t *testing.T) {
	workspace(t)

	mustRun(t, "bill", "new", "b.json", "--people", "Ann,Ben")
	mustRun(t, "bill", "item", "add", "b.json", "--name", "Cake", "--price", "20", "--assign", "Ann,Ben")
	out := mustRun(t, "bill", "person", "rm", "b.json", "ben")
	assert.Contains(t, out, "Removed Ben (p-002)")

	show := mustRun(t, "bill", "show", "b.json")
	assert.Regexp(t, regexp.MustCompile(`p-001\s+Ann\s+\$20\.00`), show)
	assert.NotContains(t, show, "Ben")
}

func TestUndoClearAndAssign(t *testing.T) {
	workspace(t)

	mustRun(t, "bill", "new", "b.json", "--people", "Ann,Ben")
	mustRun(t, "bill", "item", "add", "b.json", "--name", "Soup", "--price", "6")
	mustRun(t, "bill", "item", "add", "b.json", "--name", "Bread", "--price", "4")

	show := mustRun(t, "bill", "show", "b.json")
	assert.Contains(t, show, "(nobody)")
	assert.Contains(t, show, "Unallocated: $10.00")

	mustRun(t, "bill", "item", "assign", "b.json", "soup", "--to", "Ben")
	show = mustRun(t, "bill", "show", "b.json")
	assert.Regexp(t, regexp.MustCompile(`p-002\s+Ben\s+\$6\.00`), show)

	out := mustRun(t, "bill", "undo", "b.json")
	assert.Contains(t, out, "Removed Bread (i-002)")

	mustRun(t, "bill", "item", "add", "b.json", "--name", "Tea", "--price", "2", "--assign", "Ann")
	// i-002 is free again once Bread is gone
	out = mustRun(t, "bill", "item", "rm", "b.json", "i-002")
	assert.Contains(t, out, "Removed Tea (i-002)")

	out = mustRun(t, "bill", "clear", "b.json")
	assert.Contains(t, out, "Removed 1 items")
	_, _, err := runBillsplit(t, "", "bill", "undo", "b.json")
	assert.ErrorIs(t, err, ledger.ErrNoItems)

	mustRun(t, "bill", "rename", "b.json", "Brunch")
	assert.Contains(t, mustRun(t, "bill", "show", "b.json"), "Brunch (b-001)")
}

func TestPool(t *testing.T) {
	workspace(t)

	out := mustRun(t, "pool", "Ann=100", "Ben=50", "Cat=0")
	assert.Regexp(t, regexp.MustCompile(`1\s+Cat\s+Ann\s+\$50\.00`), out)
	assert.NotRegexp(t, regexp.MustCompile(`\n2\s`), out)

	_, _, err := runBillsplit(t, "", "pool", "Ann=100", "Ann=20")
	assert.ErrorIs(t, err, settle.ErrTooFewParticipants)

	_, _, err = runBillsplit(t, "", "pool", "Ann", "Ben=3")
	assert.ErrorContains(t, err, "expected NAME=AMOUNT")
}

func TestSettleBalanceSheetFromStdin(t *testing.T) {
	workspace(t)

	sheet := `{"participants": [{"id": "a", "name": "Ann"}, {"id": "b", "name": "Ben"}, {"id": "c", "name": "Cat"}],
		"balances": {"a": 60, "b": -30, "c": -30}}`
	out, _, err := runBillsplit(t, sheet, "settle", "-", "--balances")
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`1\s+Ben\s+Ann\s+\$30\.00`), out)
	assert.Regexp(t, regexp.MustCompile(`2\s+Cat\s+Ann\s+\$30\.00`), out)

	assert.Contains(t, out, "PERSON")
	assert.NotContains(t, out, "PAID")
	assert.NotContains(t, out, "OWED")
	assert.Regexp(t, regexp.MustCompile(`Ben\s+-\$30\.00\n`), out)
	assert.Regexp(t, regexp.MustCompile(`Ann\s+\+\$60\.00\n`), out)
}

func TestBillFromStdinWritesToStdout(t *testing.T) {
	workspace(t)

	doc := `{"name": "Imported", "people": [{"id": "1", "name": "Ann"}], "items": []}`
	out, stderr, err := runBillsplit(t, doc, "bill", "person", "add", "-", "Ben")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Added Ben")

	bill, err := snapshot.DecodeBill(strings.NewReader(out))
	require.NoError(t, err)
	require.Len(t, bill.Participants, 2)
	assert.Equal(t, "Ben", bill.Participants[1].Name)

	_, _, err = runBillsplit(t, `{"hello": "world"}`, "bill", "show", "-")
	assert.ErrorIs(t, err, snapshot.ErrNotABill)
}
