package syncstore

import (
	"context"
	"fmt"
	"io"
	"path"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nurpe/maintenance-tracker/internal/model"
	"github.com/nurpe/maintenance-tracker/internal/remote"
)

const downloadURLExpiry = 15 * time.Minute

type BlobStorage interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
	PresignGet(ctx context.Context, key string, expires time.Duration) (string, error)
}

type Attachment struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Budgets writes a budget row plus one blob and one document row per
// attachment. A budget reaches the cache only once every step has succeeded;
// until then it is held as pending and only its missing attachments are retried.
type Budgets struct {
	records   *Collection[model.Budget, model.BudgetDraft]
	documents codec[model.BudgetDocument]
	remote    remote.Store
	blobs     BlobStorage
	tracker   *Tracker
	log       zerolog.Logger
	newKey    func(userID, budgetID, fileName string) string

	mu      sync.Mutex
	pending map[string]model.Budget
}

func newBudgets(rs remote.Store, blobs BlobStorage, tracker *Tracker, log zerolog.Logger) *Budgets {
	build := func(d model.BudgetDraft) (model.Budget, error) {
		if err := d.Validate(); err != nil {
			return model.Budget{}, err
		}
		return d.Entity(), nil
	}
	return &Budgets{
		records:   newCollection(rs, budgetCodec, build, tracker, log),
		documents: budgetDocumentCodec,
		remote:    rs,
		blobs:     blobs,
		tracker:   tracker,
		log:       log.With().Str("collection", CollectionBudgets).Logger(),
		newKey:    blobKey,
		pending:   make(map[string]model.Budget),
	}
}

func blobKey(userID, budgetID, fileName string) string {
	return fmt.Sprintf("%s/%s/%s%s", userID, budgetID, uuid.NewString(), strings.ToLower(path.Ext(fileName)))
}

func (b *Budgets) Name() string {
	return CollectionBudgets
}

func (b *Budgets) List() []model.Budget {
	return b.records.List()
}

func (b *Budgets) Get(id string) (model.Budget, bool) {
	return b.records.Get(id)
}

// Pending lists budgets saved remotely whose attachments are incomplete.
func (b *Budgets) Pending() []model.Budget {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]model.Budget, 0, len(b.pending))
	for _, budget := range b.pending {
		out = append(out, budget)
	}
	slices.SortFunc(out, func(x, y model.Budget) int { return x.CreatedAt.Compare(y.CreatedAt) })
	return out
}

func (b *Budgets) Load(ctx context.Context) error {
	ctx = context.WithoutCancel(ctx)
	rows, err := b.remote.Select(ctx, CollectionBudgets)
	if err != nil {
		return wrapRemote(OpSelect, CollectionBudgets, err)
	}
	docRows, err := b.remote.Select(ctx, CollectionBudgetDocuments)
	if err != nil {
		return wrapRemote(OpSelect, CollectionBudgetDocuments, err)
	}

	byBudget := make(map[string][]model.BudgetDocument)
	for _, row := range docRows {
		doc, err := b.documents.decode(row)
		if err != nil {
			return err
		}
		byBudget[doc.BudgetID] = append(byBudget[doc.BudgetID], doc)
	}

	budgets := make([]model.Budget, 0, len(rows))
	for _, row := range rows {
		budget, err := budgetCodec.decode(row)
		if err != nil {
			return err
		}
		budget.Documents = byBudget[budget.ID]
		budgets = append(budgets, budget)
	}
	b.records.replace(budgets)
	b.log.Debug().Int("count", len(budgets)).Msg("collection loaded")
	return nil
}

// Create returns a *PartialWriteError together with the saved budget when the
// budget row was written but some attachments were not.
func (b *Budgets) Create(ctx context.Context, draft model.BudgetDraft, attachments []Attachment) (model.Budget, error) {
	budget, err := b.records.build(draft)
	if err != nil {
		return model.Budget{}, err
	}

	mutation := b.tracker.begin(CollectionBudgets, OpCreate, "")
	saved, err := b.records.insert(ctx, budget)
	if err != nil {
		b.tracker.fail(mutation, "", err)
		b.log.Error().Err(err).Msg("create failed")
		return model.Budget{}, err
	}

	docs, failures := b.attach(ctx, saved, attachments)
	saved.Documents = docs
	if len(failures) > 0 {
		perr := &PartialWriteError{BudgetID: saved.ID, Failed: failures}
		b.mu.Lock()
		b.pending[saved.ID] = saved
		b.mu.Unlock()
		b.tracker.fail(mutation, saved.ID, perr)
		b.log.Warn().Err(perr).Str("id", saved.ID).Msg("budget saved with missing attachments")
		return saved, perr
	}

	b.records.add(saved)
	b.tracker.confirm(mutation, saved.ID)
	b.log.Info().Str("id", saved.ID).Int("documents", len(docs)).Msg("created")
	return saved, nil
}

// AddDocuments uploads attachments for a pending budget (completing it) or for
// a cached one. The new documents are merged into the entry as it stands once
// the uploads finish.
func (b *Budgets) AddDocuments(ctx context.Context, budgetID string, attachments []Attachment) (model.Budget, error) {
	budget, ok := b.lookup(budgetID)
	if !ok {
		return model.Budget{}, fmt.Errorf("budget %s: %w", budgetID, ErrNotFound)
	}

	mutation := b.tracker.begin(CollectionBudgetDocuments, OpCreate, budgetID)
	docs, failures := b.attach(ctx, budget, attachments)

	merged, ok := b.merge(budgetID, docs, len(failures) == 0)
	if !ok {
		err := fmt.Errorf("budget %s: %w", budgetID, ErrNotFound)
		b.tracker.fail(mutation, budgetID, err)
		b.log.Warn().Str("id", budgetID).Int("documents", len(docs)).Msg("budget deleted while documents were added")
		return model.Budget{}, err
	}
	if len(failures) > 0 {
		perr := &PartialWriteError{BudgetID: budgetID, Failed: failures}
		b.tracker.fail(mutation, budgetID, perr)
		return merged, perr
	}
	b.tracker.confirm(mutation, budgetID)
	return merged, nil
}

// Delete removes document rows, then the budget row. Blob removal is best effort.
func (b *Budgets) Delete(ctx context.Context, id string) error {
	budget, ok := b.lookup(id)
	if !ok {
		return fmt.Errorf("budget %s: %w", id, ErrNotFound)
	}

	ctx = context.WithoutCancel(ctx)
	mutation := b.tracker.begin(CollectionBudgets, OpDelete, id)
	deleted := make(map[string]bool, len(budget.Documents))
	for _, doc := range budget.Documents {
		if err := b.remote.Delete(ctx, CollectionBudgetDocuments, doc.ID); err != nil {
			rerr := wrapRemote(OpDelete, CollectionBudgetDocuments, err)
			b.forget(id, deleted)
			b.tracker.fail(mutation, id, rerr)
			return rerr
		}
		deleted[doc.ID] = true
		if err := b.blobs.Delete(ctx, doc.FilePath); err != nil {
			b.log.Warn().Err(err).Str("path", doc.FilePath).Msg("blob removal failed")
		}
	}

	if err := b.remote.Delete(ctx, CollectionBudgets, id); err != nil {
		rerr := wrapRemote(OpDelete, CollectionBudgets, err)
		b.forget(id, deleted)
		b.tracker.fail(mutation, id, rerr)
		return rerr
	}

	b.mu.Lock()
	delete(b.pending, id)
	b.records.remove(id)
	b.mu.Unlock()
	b.tracker.confirm(mutation, id)
	b.log.Info().Str("id", id).Msg("deleted")
	return nil
}

func (b *Budgets) DownloadURL(ctx context.Context, budgetID, documentID string) (string, model.BudgetDocument, error) {
	budget, ok := b.lookup(budgetID)
	if !ok {
		return "", model.BudgetDocument{}, fmt.Errorf("budget %s: %w", budgetID, ErrNotFound)
	}
	for _, doc := range budget.Documents {
		if doc.ID != documentID {
			continue
		}
		url, err := b.blobs.PresignGet(ctx, doc.FilePath, downloadURLExpiry)
		if err != nil {
			return "", doc, err
		}
		return url, doc, nil
	}
	return "", model.BudgetDocument{}, fmt.Errorf("document %s: %w", documentID, ErrNotFound)
}

// lookup finds a budget among pending and cached ones. Holding mu keeps a
// budget that moves from pending to cached visible in one of the two.
func (b *Budgets) lookup(id string) (model.Budget, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if budget, ok := b.pending[id]; ok {
		return budget, true
	}
	return b.records.Get(id)
}

// merge appends docs to the current entry. A pending budget moves to the
// cache once complete. It reports false when the budget is gone.
func (b *Budgets) merge(id string, docs []model.BudgetDocument, complete bool) (model.Budget, bool) {
	add := func(budget *model.Budget) {
		budget.Documents = append(slices.Clone(budget.Documents), docs...)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if budget, ok := b.pending[id]; ok {
		add(&budget)
		if !complete {
			b.pending[id] = budget
			return budget, true
		}
		delete(b.pending, id)
		b.records.add(budget)
		return budget, true
	}
	return b.records.update(id, add)
}

// forget drops documents already deleted remotely from the current entry.
func (b *Budgets) forget(id string, deleted map[string]bool) {
	drop := func(budget *model.Budget) {
		budget.Documents = slices.DeleteFunc(slices.Clone(budget.Documents), func(doc model.BudgetDocument) bool {
			return deleted[doc.ID]
		})
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if budget, ok := b.pending[id]; ok {
		drop(&budget)
		b.pending[id] = budget
		return
	}
	b.records.update(id, drop)
}

// attach runs upload then record for each attachment. A document whose record
// insert fails has its blob removed so a retry starts clean.
func (b *Budgets) attach(ctx context.Context, budget model.Budget, attachments []Attachment) ([]model.BudgetDocument, []AttachmentFailure) {
	ctx = context.WithoutCancel(ctx)
	var (
		docs     []model.BudgetDocument
		failures []AttachmentFailure
	)
	for _, a := range attachments {
		key := b.newKey(budget.UserID, budget.ID, a.Name)
		if err := b.blobs.Put(ctx, key, a.Body, a.Size, a.ContentType); err != nil {
			failures = append(failures, AttachmentFailure{Name: a.Name, Step: StepUpload, Err: err})
			continue
		}

		doc := model.BudgetDocument{
			BudgetID: budget.ID,
			FileName: a.Name,
			FilePath: key,
			FileType: a.ContentType,
			FileSize: a.Size,
			UserID:   budget.UserID,
		}
		row, err := b.remote.Insert(ctx, CollectionBudgetDocuments, b.documents.encode(doc))
		if err == nil {
			doc, err = b.documents.decode(row)
		} else {
			err = wrapRemote(OpCreate, CollectionBudgetDocuments, err)
		}
		if err != nil {
			if derr := b.blobs.Delete(ctx, key); derr != nil {
				b.log.Warn().Err(derr).Str("path", key).Msg("orphaned blob")
			}
			failures = append(failures, AttachmentFailure{Name: a.Name, Step: StepRecord, Err: err})
			continue
		}
		docs = append(docs, doc)
	}
	return docs, failures
}
