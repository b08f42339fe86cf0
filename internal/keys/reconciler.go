package keys

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/go-logr/logr"
)

// RemoteKey is a key registered on the account.
type RemoteKey struct {
	ID          int
	Name        string
	PublicKey   string
	Fingerprint string
}

// Handle is the outcome of reconciliation: the fingerprint to attach to the
// droplet and whether it was registered during this run.
type Handle struct {
	Fingerprint string
	Created     bool
}

// Store is the account key inventory.
type Store interface {
	// ListKeys returns every key on the account, across all pages.
	ListKeys(ctx context.Context) ([]RemoteKey, error)
	// CreateKey registers a key. A refusal because the material is already
	// registered must wrap ErrKeyConflict.
	CreateKey(ctx context.Context, name, publicKey string) (*RemoteKey, error)
}

// Reconciler picks the single account key for a run.
type Reconciler struct {
	store  Store
	source *Source
	match  MatchFunc
	log    logr.Logger
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithMatchFunc replaces the default containment comparison.
func WithMatchFunc(fn MatchFunc) Option {
	return func(r *Reconciler) {
		r.match = fn
	}
}

// WithLogger sets the logger used for match and registration events.
func WithLogger(log logr.Logger) Option {
	return func(r *Reconciler) {
		r.log = log
	}
}

// NewReconciler creates a Reconciler reading local keys from source.
func NewReconciler(store Store, source *Source, opts ...Option) *Reconciler {
	r := &Reconciler{
		store:  store,
		source: source,
		match:  ContainsMatch,
		log:    logr.Discard(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reconcile reads ~/.ssh/<identifierName>.pub and resolves it against the
// account. A new key, if needed, is registered as accountName. The local key
// is read before the account is contacted.
func (r *Reconciler) Reconcile(ctx context.Context, accountName, identifierName string) (Handle, error) {
	publicKey, err := r.source.ReadPublicKey(identifierName)
	if err != nil {
		return Handle{}, err
	}
	return r.ReconcilePublicKey(ctx, accountName, publicKey)
}

// ReconcilePublicKey resolves an already loaded public key against the
// account. It makes at most one create call.
func (r *Reconciler) ReconcilePublicKey(ctx context.Context, accountName, publicKey string) (Handle, error) {
	log := r.log.WithValues("localFingerprint", Fingerprint(publicKey))

	existing, err := r.list(ctx)
	if err != nil {
		return Handle{}, err
	}

	if len(existing) > 0 {
		if key, ok := r.find(publicKey, existing); ok {
			log.Info("Public key already registered on the account", "key", key.Name, "fingerprint", key.Fingerprint)
			return Handle{Fingerprint: key.Fingerprint}, nil
		}

		mismatch := &MatchInconsistencyError{
			LocalFingerprint: Fingerprint(publicKey),
			AccountKeys:      names(existing),
		}
		log.Error(mismatch, "Account holds keys but none match, refusing to register a duplicate")
		return Handle{}, mismatch
	}

	created, err := r.store.CreateKey(ctx, accountName, publicKey)
	if err != nil {
		if errors.Is(err, ErrKeyConflict) {
			return r.resolveConflict(ctx, publicKey, err)
		}
		return Handle{}, err
	}

	log.Info("Registered public key", "key", created.Name, "fingerprint", created.Fingerprint)
	return Handle{Fingerprint: created.Fingerprint, Created: true}, nil
}

// resolveConflict handles a concurrent run registering the same key between
// our list and create calls. The account is listed once more; without a match
// the create error stands.
func (r *Reconciler) resolveConflict(ctx context.Context, publicKey string, createErr error) (Handle, error) {
	existing, err := r.list(ctx)
	if err != nil {
		return Handle{}, errors.Join(createErr, err)
	}
	key, ok := r.find(publicKey, existing)
	if !ok {
		return Handle{}, createErr
	}
	r.log.Info("Key was registered concurrently, using it", "key", key.Name, "fingerprint", key.Fingerprint)
	return Handle{Fingerprint: key.Fingerprint}, nil
}

func (r *Reconciler) list(ctx context.Context) ([]RemoteKey, error) {
	existing, err := r.store.ListKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list account keys: %w", err)
	}
	existing = slices.Clone(existing)
	slices.SortStableFunc(existing, func(a, b RemoteKey) int {
		return cmp.Compare(a.Name, b.Name)
	})
	return existing, nil
}

func (r *Reconciler) find(publicKey string, existing []RemoteKey) (RemoteKey, bool) {
	for _, key := range existing {
		if r.match(publicKey, key.PublicKey) {
			return key, true
		}
	}
	return RemoteKey{}, false
}

func names(existing []RemoteKey) []string {
	out := make([]string, len(existing))
	for i, key := range existing {
		out[i] = key.Name
	}
	return out
}

// Outcome classifies a reconciliation result for metrics.
func Outcome(h Handle, err error) string {
	switch {
	case errors.Is(err, ErrMatchInconsistency):
		return "inconsistent"
	case err != nil:
		return "error"
	case h.Created:
		return "created"
	default:
		return "matched"
	}
}
