package commands

import (
	"fmt"
	"io"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/billsplit-dev/billsplit/internal/id"
	"github.com/billsplit-dev/billsplit/internal/model"
	"github.com/billsplit-dev/billsplit/internal/money"
	"github.com/billsplit-dev/billsplit/internal/settle"
	"github.com/billsplit-dev/billsplit/internal/snapshot"
)

// outputFlags selects how a settlement is printed.
type outputFlags struct {
	json bool
	csv  bool
	out  string
	name string
}

func (o *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&o.json, "json", false, "print the settlement as JSON")
	cmd.Flags().BoolVar(&o.csv, "csv", false, "print the transfers as CSV")
	cmd.Flags().StringVarP(&o.out, "out", "o", "-", "write output to this file")
	cmd.Flags().StringVar(&o.name, "name", "", "settlement name (default from config)")
	cmd.MarkFlagsMutuallyExclusive("json", "csv")
}

func newSettleCommand(a *app) *cobra.Command {
	var paid []string
	var fromBalances bool
	var output outputFlags

	cmd := &cobra.Command{
		Use:   "settle FILE",
		Short: "Work out who pays whom",
		Long: `Settle a bill file.

With --paid, each participant's balance is what they paid minus what they
owe. Without it, everyone is assumed to have put in an equal share of the
total and the balance is that share minus what they owe.

With --balances, FILE holds {participants, balances} instead of a bill.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var participants []model.Participant
			var owed, balances []model.Balance
			var err error

			if fromBalances {
				participants, balances, err = a.readBalances(cmd, args[0])
			} else {
				participants, owed, balances, err = a.billBalances(cmd, args[0], paid)
			}
			if err != nil {
				return err
			}

			if err := a.checkResidual(balances); err != nil {
				return err
			}
			return a.emitPlan(cmd, output, settle.People(participants, owed, balances), fromBalances)
		},
	}

	cmd.Flags().StringArrayVar(&paid, "paid", nil, "amount a participant paid, as PERSON=AMOUNT (repeatable)")
	cmd.Flags().BoolVar(&fromBalances, "balances", false, "FILE is a balance sheet, not a bill")
	output.register(cmd)
	cmd.MarkFlagsMutuallyExclusive("paid", "balances")

	return cmd
}

func (a *app) billBalances(cmd *cobra.Command, path string, paid []string) ([]model.Participant, []model.Balance, []model.Balance, error) {
	l, err := a.openLedger(cmd, path)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := l.ReadyToSettle(); err != nil {
		return nil, nil, nil, err
	}
	if u := l.Unallocated(); u.IsPositive() {
		a.log.Warn("some items are not assigned to anyone", "unallocated", u.StringFixed(money.Places))
	}

	participants := l.Participants()
	owed := l.OwedShares()

	if len(paid) == 0 {
		a.log.Debug("no payments given; assuming equal contributions")
		return participants, owed, settle.FromConsumption(owed), nil
	}

	amounts := make(map[string]decimal.Decimal, len(paid))
	for _, pair := range paid {
		ref, amount, err := parseAmountPair(pair)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("--paid: %w", err)
		}
		p, err := resolveParticipant(participants, ref)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("--paid: %w", err)
		}
		amounts[p.ID] = amounts[p.ID].Add(amount)
	}
	return participants, owed, settle.FromPayments(owed, amounts), nil
}

func (a *app) readBalances(cmd *cobra.Command, path string) ([]model.Participant, []model.Balance, error) {
	r, err := openInput(cmd, path)
	if err != nil {
		return nil, nil, err
	}
	defer r.Close()

	sheet, err := snapshot.DecodeBalances(r)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := settle.RequireParticipants(sheet.Balances); err != nil {
		return nil, nil, err
	}

	participants := sheet.Participants
	known := snapshot.Names(participants)
	for _, b := range sheet.Balances {
		if _, ok := known[b.ParticipantID]; !ok {
			participants = append(participants, model.Participant{ID: b.ParticipantID, Name: b.ParticipantID})
		}
	}
	return participants, sheet.Balances, nil
}

// checkResidual refuses unbalanced input in strict mode and warns about it
// otherwise.
func (a *app) checkResidual(balances []model.Balance) error {
	r := settle.Residual(balances)
	if !r.Abs().GreaterThan(money.Epsilon) {
		return nil
	}
	if a.cfg.Settlement.Strict {
		return fmt.Errorf("%w (set settlement.strict: false to settle anyway)", &settle.ConservationError{Residual: r})
	}
	a.log.Warn("balances do not sum to zero; some of it will stay unmatched", "residual", r.StringFixed(money.Places))
	return nil
}

// emitPlan settles people and writes the plan in the requested format.
// balancesOnly drops the paid and owed columns from the text table.
func (a *app) emitPlan(cmd *cobra.Command, output outputFlags, people []model.PersonPayment, balancesOnly bool) error {
	ids, err := a.ids()
	if err != nil {
		return err
	}
	name := output.name
	if name == "" {
		name = a.cfg.Settlement.DefaultName
	}
	plan := settle.Plan(ids, name, a.now().UTC(), people)
	a.log.Debug("settlement computed", "transfers", len(plan.Transfers), "total", plan.Total().StringFixed(money.Places))

	return writeOutput(cmd, output.out, func(w io.Writer) error {
		switch {
		case output.json:
			return snapshot.EncodeSettlement(w, plan)
		case output.csv:
			names := make(map[string]string, len(plan.People))
			for _, p := range plan.People {
				names[p.ID] = p.Name
			}
			return snapshot.WriteTransfersCSV(w, plan.Transfers, names)
		default:
			return a.renderSettlement(w, plan, balancesOnly)
		}
	})
}

func newPoolCommand(a *app) *cobra.Command {
	var output outputFlags

	cmd := &cobra.Command{
		Use:     "pool NAME=AMOUNT...",
		Short:   "Even out what each person spent on the group",
		Example: `  billsplit pool Ann=120 Ben=45.50 Cat=0`,
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := a.ids()
			if err != nil {
				return err
			}

			var participants []model.Participant
			index := make(map[string]int)
			spent := make([]model.Balance, 0, len(args))
			for _, arg := range args {
				name, amount, err := parseAmountPair(arg)
				if err != nil {
					return err
				}
				if i, ok := index[name]; ok {
					spent[i].Amount = spent[i].Amount.Add(amount)
					continue
				}
				if name == "" {
					return fmt.Errorf("expected NAME=AMOUNT, got %q", arg)
				}
				p := model.Participant{ID: ids.Next(id.KindParticipant), Name: name}
				index[name] = len(participants)
				participants = append(participants, p)
				spent = append(spent, model.Balance{ParticipantID: p.ID, Amount: amount})
			}
			if err := settle.RequireParticipants(spent); err != nil {
				return err
			}

			balances := settle.FromPooled(spent)
			return a.emitPlan(cmd, output, settle.People(participants, poolShares(spent, balances), balances), false)
		},
	}
	output.register(cmd)
	return cmd
}

// poolShares recovers each person's share of the pool: spent - balance.
func poolShares(spent, balances []model.Balance) []model.Balance {
	byID := model.BalanceMap(balances)
	out := make([]model.Balance, len(spent))
	for i, s := range spent {
		out[i] = model.Balance{ParticipantID: s.ParticipantID, Amount: s.Amount.Sub(byID[s.ParticipantID])}
	}
	return out
}

func newPaidCommand(a *app) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "paid FILE N...",
		Short: "Toggle whether transfer N of a saved settlement has been paid",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openInput(cmd, args[0])
			if err != nil {
				return err
			}
			s, err := snapshot.DecodeSettlement(r)
			r.Close()
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			indexes := make([]int, 0, len(args)-1)
			for _, arg := range args[1:] {
				var n int
				if _, err := fmt.Sscan(arg, &n); err != nil {
					return fmt.Errorf("transfer number %q: %w", arg, err)
				}
				indexes = append(indexes, n)
			}
			sort.Ints(indexes)

			for _, n := range indexes {
				settled, err := s.Toggle(n - 1)
				if err != nil {
					return err
				}
				t := s.Transfers[n-1]
				state := "pending"
				if settled {
					state = "settled"
				}
				status(cmd, args[0], out, "#%d %s -> %s %s: %s",
					n, s.PersonName(t.From), s.PersonName(t.To), a.amount(t.Amount), state)
			}

			target := out
			if target == "" {
				target = args[0]
			}
			return writeOutput(cmd, target, func(w io.Writer) error {
				return snapshot.EncodeSettlement(w, s)
			})
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the settlement here instead of FILE")
	return cmd
}
