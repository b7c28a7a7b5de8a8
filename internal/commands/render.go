package commands

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/billsplit-dev/billsplit/internal/model"
	"github.com/billsplit-dev/billsplit/internal/money"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// renderBill prints the items of a bill followed by what each participant
// owes.
func (a *app) renderBill(w io.Writer, bill model.Bill, owed []model.Balance) error {
	fmt.Fprintf(w, "%s (%s)\n\n", bill.Name, bill.ID)

	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tITEM\tQTY\tUNIT\tPRICE\tSPLIT BETWEEN")
	for _, it := range bill.Items {
		names := make([]string, len(it.AssignedTo))
		for i, pid := range it.AssignedTo {
			names[i] = bill.ParticipantName(pid)
		}
		split := strings.Join(names, ", ")
		if split == "" {
			split = "(nobody)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\n",
			it.ID, it.Name, it.Quantity, a.amount(it.UnitPrice), a.amount(it.Price), split)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "\nTotal: %s\n\n", a.amount(bill.Total()))

	tw = newTable(w)
	fmt.Fprintln(tw, "ID\tPERSON\tOWES")
	for _, o := range owed {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", o.ParticipantID, bill.ParticipantName(o.ParticipantID), a.amount(o.Amount))
	}
	return tw.Flush()
}

// renderSettlement prints the per-person summary and the numbered transfer
// list. With balancesOnly the summary has no paid or owed columns.
func (a *app) renderSettlement(w io.Writer, s model.Settlement, balancesOnly bool) error {
	fmt.Fprintf(w, "%s\n\n", s.Name)

	if len(s.People) > 0 {
		tw := newTable(w)
		if balancesOnly {
			fmt.Fprintln(tw, "PERSON\tBALANCE")
		} else {
			fmt.Fprintln(tw, "PERSON\tPAID\tOWED\tBALANCE")
		}
		for _, p := range s.People {
			balance := money.FormatSigned(p.Balance, a.cfg.Currency.Symbol)
			if balancesOnly {
				fmt.Fprintf(tw, "%s\t%s\n", p.Name, balance)
				continue
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.Name, a.amount(p.Paid), a.amount(p.Owed), balance)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		fmt.Fprintln(w)
	}

	if len(s.Transfers) == 0 {
		fmt.Fprintln(w, "Everyone is settled up.")
		return nil
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "#\tFROM\tTO\tAMOUNT\tSTATUS")
	for i, t := range s.Transfers {
		status := "pending"
		if t.Settled {
			status = "settled"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", i+1, s.PersonName(t.From), s.PersonName(t.To), a.amount(t.Amount), status)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "\nTotal: %s (settled %s, pending %s)\n",
		a.amount(s.Total()), a.amount(s.SettledTotal()), a.amount(s.PendingTotal()))
	return nil
}
