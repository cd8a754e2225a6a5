package reward

import "context"

type Repository interface {
	ListBadges(ctx context.Context) ([]Badge, error)
	ListUnlocks(ctx context.Context, actorID string) ([]BadgeUnlock, error)
	// Unlock records the unlock once; it reports false when it already existed.
	Unlock(ctx context.Context, unlock BadgeUnlock) (bool, error)
	ListCatalog(ctx context.Context) ([]CatalogItem, error)
	GetCatalogItem(ctx context.Context, itemID string) (CatalogItem, bool, error)
	ListPurchases(ctx context.Context, actorID string) ([]Purchase, error)
	// Purchase runs replay detection, the cycle check, the balance check, the
	// debit and the purchase insert in one transaction.
	Purchase(ctx context.Context, order PurchaseOrder) (PurchaseResult, error)
}
