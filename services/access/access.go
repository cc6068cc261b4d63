// Package access decides whether a user may view a content item.
package access

import (
	"context"
	"errors"
	"fmt"

	"github.com/Macwinner1/Xecret/models"
	"github.com/Macwinner1/Xecret/store"
)

type Reason string

const (
	ReasonFree         Reason = "free"
	ReasonCreator      Reason = "creator"
	ReasonPurchased    Reason = "purchased"
	ReasonNotPurchased Reason = "not_purchased"
)

type Decision struct {
	Allowed bool   `json:"has_access"`
	Reason  Reason `json:"reason"`
}

// Checker answers access questions from the purchase records. Nothing is
// cached; every call reads the store.
type Checker struct {
	purchases store.PurchaseStore
}

func NewChecker(purchases store.PurchaseStore) *Checker {
	return &Checker{purchases: purchases}
}

// CanAccess reports whether userID may view content. An empty userID is an
// anonymous viewer and only sees free content.
func (c *Checker) CanAccess(ctx context.Context, userID string, content *models.Content) (Decision, error) {
	if content.AccessType == models.AccessFree {
		return Decision{Allowed: true, Reason: ReasonFree}, nil
	}
	if userID == "" {
		return Decision{Allowed: false, Reason: ReasonNotPurchased}, nil
	}
	if content.CreatorID == userID {
		return Decision{Allowed: true, Reason: ReasonCreator}, nil
	}

	_, err := c.purchases.FindPurchase(ctx, userID, content.ID)
	switch {
	case err == nil:
		return Decision{Allowed: true, Reason: ReasonPurchased}, nil
	case errors.Is(err, store.ErrNotFound):
		return Decision{Allowed: false, Reason: ReasonNotPurchased}, nil
	default:
		return Decision{}, fmt.Errorf("lookup purchase: %w", err)
	}
}
