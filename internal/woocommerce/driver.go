package woocommerce

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/law-makers/catalogsync/internal/metrics"
	"github.com/law-makers/catalogsync/pkg/models"
)

// DefaultDeleteConcurrency bounds parallel DELETE calls
const DefaultDeleteConcurrency = 8

// DriverOptions tunes a Driver
type DriverOptions struct {
	DeleteConcurrency int
	Metrics           *metrics.Metrics

	// OnProduct is called after every product create attempt
	OnProduct func()
}

// Driver replaces the remote catalog with a scraped one
type Driver struct {
	client *Client
	opts   DriverOptions
}

// SyncSummary reports what a Sync changed
type SyncSummary struct {
	CategoriesDeleted int
	CategoriesCreated int
	ProductsDeleted   int
	ProductsCreated   int
	ProductsFailed    int
}

// NewDriver creates a Driver on top of client
func NewDriver(client *Client, opts DriverOptions) *Driver {
	if opts.DeleteConcurrency <= 0 {
		opts.DeleteConcurrency = DefaultDeleteConcurrency
	}
	return &Driver{client: client, opts: opts}
}

// Ping checks the store accepts the configured keys
func (d *Driver) Ping(ctx context.Context) error {
	return d.client.Ping(ctx)
}

// Sync reconciles categories with the catalog's section slugs, then
// replaces every remote product. Record categories missing from sections
// are kept too, so a record never loses its category.
func (d *Driver) Sync(ctx context.Context, sections []string, records []*models.ProductRecord) (*SyncSummary, error) {
	summary := &SyncSummary{}

	lookup, err := d.reconcile(ctx, CategoryNames(sections, records), summary)
	if err != nil {
		return summary, err
	}

	err = d.replace(ctx, records, lookup, summary)
	return summary, err
}

// CategoryNames returns the distinct non-empty section names followed by
// any record category not among them, in first-seen order.
func CategoryNames(sections []string, records []*models.ProductRecord) []string {
	seen := make(map[string]struct{})
	var names []string
	add := func(name string) {
		if name == "" {
			return
		}
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}

	for _, s := range sections {
		add(s)
	}
	for _, r := range records {
		add(r.Category)
	}
	return names
}

// ReconcileCategories deletes remote categories not in names, creates the
// missing ones and returns the resulting name to id lookup.
func (d *Driver) ReconcileCategories(ctx context.Context, names []string) (map[string]int, error) {
	return d.reconcile(ctx, names, &SyncSummary{})
}

func (d *Driver) reconcile(ctx context.Context, names []string, summary *SyncSummary) (map[string]int, error) {
	remote, err := d.client.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}

	existing := make(map[string]bool, len(remote))
	var stale []int
	for _, c := range remote {
		if wanted[c.Name] {
			existing[c.Name] = true
			continue
		}
		stale = append(stale, c.ID)
	}

	if err := d.deleteAll(ctx, stale, d.client.DeleteCategory, "category"); err != nil {
		return nil, fmt.Errorf("failed to delete stale categories: %w", err)
	}
	summary.CategoriesDeleted = len(stale)

	for _, name := range names {
		if existing[name] {
			continue
		}
		if _, err := d.client.CreateCategory(ctx, name); err != nil {
			return nil, fmt.Errorf("failed to create category %q: %w", name, err)
		}
		d.opts.Metrics.IncSynced("category", "create")
		summary.CategoriesCreated++
	}

	log.Info().
		Int("deleted", summary.CategoriesDeleted).
		Int("created", summary.CategoriesCreated).
		Msg("Categories reconciled")

	remote, err = d.client.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	lookup := make(map[string]int, len(remote))
	for _, c := range remote {
		lookup[c.Name] = c.ID
	}
	return lookup, nil
}

// ReplaceAllProducts deletes every remote product and creates one per
// record. It returns the number created; failed creates are joined into
// the returned error without stopping the rest.
func (d *Driver) ReplaceAllProducts(ctx context.Context, records []*models.ProductRecord, lookup map[string]int) (int, error) {
	summary := &SyncSummary{}
	err := d.replace(ctx, records, lookup, summary)
	return summary.ProductsCreated, err
}

func (d *Driver) replace(ctx context.Context, records []*models.ProductRecord, lookup map[string]int, summary *SyncSummary) error {
	remote, err := d.client.ListProducts(ctx)
	if err != nil {
		return fmt.Errorf("failed to list products: %w", err)
	}

	ids := make([]int, len(remote))
	for i, p := range remote {
		ids[i] = p.ID
	}
	if err := d.deleteAll(ctx, ids, d.client.DeleteProduct, "product"); err != nil {
		return fmt.Errorf("failed to delete products: %w", err)
	}
	summary.ProductsDeleted = len(ids)
	log.Info().Int("deleted", len(ids)).Msg("Remote products removed")

	var errs []error
	for _, record := range records {
		if err := ctx.Err(); err != nil {
			return err
		}

		if _, ok := lookup[record.Category]; !ok {
			log.Warn().
				Str("url", record.URL).
				Str("category", record.Category).
				Msg("Category unknown remotely, creating product without category")
		}

		_, err := d.client.CreateProduct(ctx, BuildProduct(record, lookup))
		if d.opts.OnProduct != nil {
			d.opts.OnProduct()
		}
		if err != nil {
			log.Error().Err(err).Str("url", record.URL).Msg("Failed to create product")
			summary.ProductsFailed++
			errs = append(errs, fmt.Errorf("%s: %w", record.URL, err))
			continue
		}
		d.opts.Metrics.IncSynced("product", "create")
		summary.ProductsCreated++
	}

	log.Info().
		Int("created", summary.ProductsCreated).
		Int("failed", summary.ProductsFailed).
		Msg("Products created")

	return errors.Join(errs...)
}

func (d *Driver) deleteAll(ctx context.Context, ids []int, del func(context.Context, int) error, resource string) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.opts.DeleteConcurrency)

	for _, id := range ids {
		id := id
		g.Go(func() error {
			if err := del(gctx, id); err != nil {
				return fmt.Errorf("%s %d: %w", resource, id, err)
			}
			d.opts.Metrics.IncSynced(resource, "delete")
			return nil
		})
	}
	return g.Wait()
}
