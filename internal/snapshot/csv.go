package snapshot

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/billsplit-dev/billsplit/internal/model"
)

// TransfersHeader is the header row of a transfers CSV report.
const TransfersHeader = "from,from_name,to,to_name,amount,settled"

const (
	numTransferFields = 6
	colFrom           = 0
	colFromName       = 1
	colTo             = 2
	colToName         = 3
	colAmount         = 4
	colSettled        = 5
)

// WriteTransfersCSV writes transfers with a header row. names maps
// participant IDs to display names; missing names are written as
// model.UnknownName.
func WriteTransfersCSV(w io.Writer, transfers []model.Transfer, names map[string]string) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(TransfersHeader, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, t := range transfers {
		if err := cw.Write(MarshalTransfer(t, names)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadTransfersCSV reads a report written by WriteTransfersCSV. It returns
// the transfers and the ID to name mapping found in the name columns.
func ReadTransfersCSV(r io.Reader) ([]model.Transfer, map[string]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numTransferFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("reading transfers CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, nil
	}
	if strings.Join(records[0], ",") != TransfersHeader {
		return nil, nil, fmt.Errorf("unexpected header %q", strings.Join(records[0], ","))
	}

	transfers := make([]model.Transfer, 0, len(records)-1)
	names := make(map[string]string)
	for i, rec := range records[1:] {
		t, err := UnmarshalTransfer(rec)
		if err != nil {
			return nil, nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		transfers = append(transfers, t)
		names[t.From] = rec[colFromName]
		names[t.To] = rec[colToName]
	}
	return transfers, names, nil
}

// MarshalTransfer converts a transfer to a CSV row.
func MarshalTransfer(t model.Transfer, names map[string]string) []string {
	row := make([]string, numTransferFields)
	row[colFrom] = t.From
	row[colFromName] = nameOf(names, t.From)
	row[colTo] = t.To
	row[colToName] = nameOf(names, t.To)
	row[colAmount] = t.Amount.StringFixed(2)
	row[colSettled] = strconv.FormatBool(t.Settled)
	return row
}

// UnmarshalTransfer converts a CSV row to a transfer. An empty settled
// column reads as false.
func UnmarshalTransfer(record []string) (model.Transfer, error) {
	if len(record) != numTransferFields {
		return model.Transfer{}, fmt.Errorf("expected %d fields, got %d", numTransferFields, len(record))
	}

	amount, err := decimal.NewFromString(record[colAmount])
	if err != nil {
		return model.Transfer{}, fmt.Errorf("parsing amount %q: %w", record[colAmount], err)
	}

	var settled bool
	if record[colSettled] != "" {
		settled, err = strconv.ParseBool(record[colSettled])
		if err != nil {
			return model.Transfer{}, fmt.Errorf("parsing settled %q: %w", record[colSettled], err)
		}
	}

	return model.Transfer{
		From:    record[colFrom],
		To:      record[colTo],
		Amount:  amount,
		Settled: settled,
	}, nil
}

func nameOf(names map[string]string, id string) string {
	if n, ok := names[id]; ok {
		return n
	}
	return model.UnknownName
}

// Names builds the ID to name mapping used by the CSV writer.
func Names(participants []model.Participant) map[string]string {
	out := make(map[string]string, len(participants))
	for _, p := range participants {
		out[p.ID] = p.Name
	}
	return out
}
