package usecase

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/danghuy/secondcell/internal/domain"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// UploadFile is one image picked in the listing form.
type UploadFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// InventoryUC drives the admin-facing listing lifecycle:
// Draft -> Listed -> Updated* -> Sold | Deleted. Sold and Deleted are
// terminal and both trigger best-effort image cleanup.
type InventoryUC struct {
	Products domain.ProductRepo
	Storage  domain.ObjectStorage
	Ledger   domain.SalesLedger
	Sales    domain.SaleRepo
}

// Submit lists a product: upload newly selected files, then write the
// document. Phones upsert by IMEI, everything else inserts under a
// generated id. There is no rollback of finished uploads when the
// document write fails; the blob is orphaned and only logged.
func (uc *InventoryUC) Submit(ctx context.Context, in domain.ListingInput, files []UploadFile) (*domain.Product, error) {
	if err := uc.checkInput(&in); err != nil {
		return nil, err
	}

	urls, err := uc.uploadAll(ctx, files)
	if err != nil {
		return nil, err
	}
	in.Images = append(in.Images, urls...)

	now := time.Now().UTC()
	if in.Type == domain.TypePhone {
		p := in.Product(in.IMEI, now)
		if err := uc.Products.Upsert(ctx, p); err != nil {
			log.Error().Err(err).Str("imei", in.IMEI).Msg("phone upsert failed")
			return nil, err
		}
		return p, nil
	}

	p := in.Product(uuid.NewString(), now)
	if err := uc.Products.Insert(ctx, p); err != nil {
		log.Error().Err(err).Str("name", in.Name).Msg("listing insert failed")
		return nil, err
	}
	return p, nil
}

// Update re-submits the listing form for an existing document. The image
// list is replaced wholesale; blobs dropped from the list are NOT removed
// from storage, only document deletion or a sale cleans them up.
func (uc *InventoryUC) Update(ctx context.Context, id string, in domain.ListingInput, files []UploadFile) (*domain.Product, error) {
	prev, err := uc.Products.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Type == "" {
		in.Type = prev.Type
	}
	if in.Type != prev.Type {
		return nil, domain.Invalid("type", "immutable after creation")
	}
	if err := uc.checkInput(&in); err != nil {
		return nil, err
	}

	urls, err := uc.uploadAll(ctx, files)
	if err != nil {
		return nil, err
	}
	in.Images = append(in.Images, urls...)

	p := in.Product(id, time.Now().UTC())
	p.CreatedAt = prev.CreatedAt
	if err := uc.Products.Upsert(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes the document first, then asks storage to drop its
// blobs. The steps are not transactional: a cleanup failure leaves
// orphaned blobs, is logged, and the operation still reports success.
func (uc *InventoryUC) Delete(ctx context.Context, id string) error {
	p, err := uc.Products.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := uc.Products.Delete(ctx, id); err != nil {
		return err
	}
	uc.cleanupImages(ctx, p)
	return nil
}

// MarkSold records the sale on the external ledger, cleans up images
// best-effort, then deletes the listing. The ledger transport cannot
// observe its result, so that step always counts as succeeded.
func (uc *InventoryUC) MarkSold(ctx context.Context, id string, in domain.SaleInput) (*domain.Sale, error) {
	if err := validate.Struct(in); err != nil {
		return nil, asValidation(err)
	}
	p, err := uc.Products.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	sale := &domain.Sale{
		ID:           uuid.NewString(),
		CustomerName: strings.TrimSpace(in.CustomerName),
		CustomerTel:  strings.TrimSpace(in.CustomerTel),
		BuyingPrice:  in.BuyingPrice,
		SellingPrice: in.SellingPrice,
		Product:      *p,
		SoldAt:       time.Now().UTC(),
	}

	_ = uc.Ledger.Record(ctx, sale)
	if uc.Sales != nil {
		if err := uc.Sales.Append(ctx, sale); err != nil {
			log.Error().Err(err).Str("product", id).Msg("sale record not persisted")
		}
	}

	uc.cleanupImages(ctx, p)

	if err := uc.Products.Delete(ctx, id); err != nil {
		return nil, err
	}
	return sale, nil
}

func (uc *InventoryUC) checkInput(in *domain.ListingInput) error {
	in.Normalize()
	if err := validate.Struct(*in); err != nil {
		return asValidation(err)
	}
	return in.Check()
}

func (uc *InventoryUC) uploadAll(ctx context.Context, files []UploadFile) ([]string, error) {
	urls := make([]string, 0, len(files))
	for _, f := range files {
		if len(f.Data) == 0 {
			continue
		}
		u, err := uc.Storage.Upload(ctx, f.Name, f.ContentType, f.Data)
		if err != nil {
			log.Error().Err(err).Str("file", f.Name).Msg("image upload failed")
			return nil, err
		}
		urls = append(urls, u)
	}
	return urls, nil
}

func (uc *InventoryUC) cleanupImages(ctx context.Context, p *domain.Product) {
	keys := StorageKeys(p.Images)
	if len(keys) == 0 {
		return
	}
	if err := uc.Storage.Delete(ctx, keys); err != nil {
		log.Warn().Err(err).Str("product", p.ID).Int("keys", len(keys)).Msg("image cleanup failed, blobs orphaned")
	}
}

// StorageKeys derives object keys from stored URLs by taking the path
// component. Unparseable entries are skipped with a warning, not fatal.
func StorageKeys(urls []string) []string {
	keys := make([]string, 0, len(urls))
	for _, raw := range urls {
		u, err := url.Parse(raw)
		if err != nil || u.Path == "" {
			log.Warn().Str("url", raw).Msg("skipping unparseable image url")
			continue
		}
		key := strings.TrimPrefix(u.Path, "/")
		if key == "" {
			log.Warn().Str("url", raw).Msg("skipping image url with empty key")
			continue
		}
		keys = append(keys, key)
	}
	return keys
}

func asValidation(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		f := verrs[0]
		return domain.Invalid(strings.ToLower(f.Field()), "failed "+f.Tag())
	}
	return domain.Invalid("", err.Error())
}
