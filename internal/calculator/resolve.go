package calculator

import (
	"errors"
	"fmt"

	"github.com/mmynk/splitter/internal/models"
)

// ErrUnknownPerson is returned when a receipt references a person that was
// never declared.
var ErrUnknownPerson = errors.New("unknown person reference")

// Role says where an unknown name was referenced.
type Role string

const (
	RolePayer  Role = "paid_by"
	RoleSharer Role = "shared_by"
)

// UnknownPersonError describes an undeclared name found in a receipt.
type UnknownPersonError struct {
	Name    string
	Receipt string
	Item    string // empty for RolePayer
	Role    Role
}

func (e *UnknownPersonError) Error() string {
	if e.Role == RolePayer {
		return fmt.Sprintf("%s: receipt %q is paid by %q", ErrUnknownPerson, e.Receipt, e.Name)
	}
	return fmt.Sprintf("%s: item %q of receipt %q is shared by %q", ErrUnknownPerson, e.Item, e.Receipt, e.Name)
}

// Is reports whether target is ErrUnknownPerson.
func (e *UnknownPersonError) Is(target error) bool {
	return target == ErrUnknownPerson
}

// Resolve computes who owes whom across all receipts.
//
// Algorithm:
//   - Every declared person starts with an empty debt record
//   - For each item, the sharers are its SharedBy list, or all declared
//     persons (in declaration order) when the list is empty
//   - Each sharer other than the payer owes the payer cost / len(sharers)
//   - A name listed twice in SharedBy owes two shares
//
// Amounts are accumulated in receipt, item, sharer order and never rounded.
func Resolve(persons []models.Person, receipts []models.Receipt) (BalanceTable, error) {
	balances := make(BalanceTable, len(persons))
	everyone := make([]string, 0, len(persons))
	for _, p := range persons {
		if _, exists := balances[p.Name]; exists {
			continue
		}
		balances[p.Name] = make(map[string]float64)
		everyone = append(everyone, p.Name)
	}

	for _, receipt := range receipts {
		if _, exists := balances[receipt.PaidBy]; !exists {
			return nil, &UnknownPersonError{Name: receipt.PaidBy, Receipt: receipt.Name, Role: RolePayer}
		}

		for _, item := range receipt.Items {
			sharers := item.SharedBy
			if len(sharers) == 0 {
				sharers = everyone
			}

			share := item.Cost / float64(len(sharers))
			for _, person := range sharers {
				debts, exists := balances[person]
				if !exists {
					return nil, &UnknownPersonError{
						Name:    person,
						Receipt: receipt.Name,
						Item:    item.Name,
						Role:    RoleSharer,
					}
				}
				// Paying for your own share is not a debt
				if person == receipt.PaidBy {
					continue
				}
				debts[receipt.PaidBy] += share
			}
		}
	}

	return balances, nil
}
