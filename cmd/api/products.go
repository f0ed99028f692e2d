package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"parfum/internal/domain/catalog"
	"parfum/internal/params"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ---------- helpers ----------

func generateSlug(name string) string {
	slug := strings.ToLower(name)
	slug = regexp.MustCompile(`[^a-z0-9]+`).ReplaceAllString(slug, "-")
	slug = regexp.MustCompile(`^-|-$`).ReplaceAllString(slug, "")
	return slug
}

func isValidSlug(slug string) bool {
	// Alphanumeric and hyphens only, 3-50 chars
	return regexp.MustCompile(`^[a-z0-9-]{3,50}$`).MatchString(slug)
}

// helper: sniff first 512 bytes and reset reader
func sniffMIME(file multipart.File) (string, error) {
	buf := make([]byte, 512)
	n, err := file.Read(buf)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read: %w", err)
	}
	mime := http.DetectContentType(buf[:n])

	if seeker, ok := file.(io.Seeker); ok {
		if _, err := seeker.Seek(0, io.SeekStart); err != nil {
			return "", fmt.Errorf("seek reset: %w", err)
		}
	}
	return mime, nil
}

func optString(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return id, nil
}

var allowedImageMIME = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// ---------- Admin: Brands ----------

func (app *application) createBrandHandler(w http.ResponseWriter, r *http.Request) {
	const maxBytes = 3 * 1024 * 1024 // 3MB
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("failed to parse form: %w", err))
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	name := strings.TrimSpace(r.FormValue("name"))
	slug := strings.TrimSpace(r.FormValue("slug"))
	description := strings.TrimSpace(r.FormValue("description"))
	if name == "" {
		app.badRequestResponse(w, r, fmt.Errorf("brand name is required"))
		return
	}
	if slug == "" {
		slug = generateSlug(name)
	}
	if !isValidSlug(slug) {
		app.badRequestResponse(w, r, fmt.Errorf("invalid slug format"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	exists, err := app.store.Catalog.BrandExistsByNameOrSlug(ctx, name, slug)
	if err != nil {
		app.internalServerError(w, r, fmt.Errorf("check brand existence: %w", err))
		return
	}
	if exists {
		app.conflictResponse(w, r, fmt.Errorf("brand with name '%s' or slug '%s' already exists", name, slug))
		return
	}

	// logo upload (optional) with MIME sniffing
	var logoURL string
	if file, _, err := r.FormFile("logo"); err == nil {
		defer file.Close()

		mime, err := sniffMIME(file)
		if err != nil {
			app.badRequestResponse(w, r, fmt.Errorf("sniff mime: %w", err))
			return
		}
		if !allowedImageMIME[mime] {
			app.badRequestResponse(w, r, fmt.Errorf("invalid image type: %s", mime))
			return
		}

		publicID := fmt.Sprintf("brands/%s_logo_%d", slug, time.Now().UnixNano())
		url, upErr := app.uploadToCloudinaryWithID(file, publicID)
		if upErr != nil {
			app.internalServerError(w, r, fmt.Errorf("upload logo: %w", upErr))
			return
		}
		logoURL = url
	}

	brand := &catalog.Brand{
		Name:        name,
		Slug:        slug,
		Description: optString(description),
		LogoURL:     optString(logoURL),
		IsFeatured:  r.FormValue("is_featured") == "true",
	}

	created, err := app.store.Catalog.CreateBrand(ctx, brand)
	if err != nil {
		if logoURL != "" {
			go func(url string) {
				if delErr := app.deletePhotoFromCloudinary(url); delErr != nil {
					app.logger.Errorw("cloudinary cleanup failed", "url", url, "err", delErr)
				}
			}(logoURL)
		}
		app.internalServerError(w, r, fmt.Errorf("create brand: %w", err))
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/v1/admin/brands/%d", created.ID))
	app.jsonResponse(w, http.StatusCreated, created)
}

func (app *application) updateBrandHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	brandID, err := pathID(r, "brandID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var in struct {
		Name        *string `json:"name"`
		Slug        *string `json:"slug"`
		Description *string `json:"description"`
		IsFeatured  *bool   `json:"is_featured"`
	}
	if err := readJSON(w, r, &in); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	brand, err := app.store.Catalog.GetBrandByID(ctx, brandID)
	if err != nil {
		if errors.Is(err, catalog.ErrBrandNotFound) {
			app.notFoundResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	if in.Name != nil {
		brand.Name = strings.TrimSpace(*in.Name)
	}
	if in.Slug != nil {
		if !isValidSlug(*in.Slug) {
			app.badRequestResponse(w, r, fmt.Errorf("invalid slug format"))
			return
		}
		brand.Slug = *in.Slug
	}
	if in.Description != nil {
		brand.Description = optString(*in.Description)
	}
	if in.IsFeatured != nil {
		brand.IsFeatured = *in.IsFeatured
	}

	if err := app.store.Catalog.UpdateBrand(ctx, brand); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			app.conflictResponse(w, r, fmt.Errorf("brand name or slug already taken"))
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, brand)
}

func (app *application) deleteBrandHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	brandID, err := pathID(r, "brandID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	brand, err := app.store.Catalog.GetBrandByID(ctx, brandID)
	if err != nil {
		if errors.Is(err, catalog.ErrBrandNotFound) {
			app.notFoundResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	if err := app.store.Catalog.DeleteBrand(ctx, brandID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			app.conflictResponse(w, r, fmt.Errorf("brand is still referenced by products"))
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	if brand.LogoURL != nil {
		go func(url string) {
			if delErr := app.deletePhotoFromCloudinary(url); delErr != nil {
				app.logger.Errorw("cloudinary cleanup failed", "url", url, "err", delErr)
			}
		}(*brand.LogoURL)
	}

	app.jsonResponse(w, http.StatusOK, map[string]string{"message": "brand deleted"})
}

func (app *application) listBrandsHandler(w http.ResponseWriter, r *http.Request) {
	app.renderBrandList(w, r)
}

func (app *application) adminListBrandsHandler(w http.ResponseWriter, r *http.Request) {
	app.renderBrandList(w, r)
}

func (app *application) renderBrandList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	pg := params.ParsePagination(r.URL.Query())

	brands, total, err := app.store.Catalog.ListBrands(ctx, pg.Limit, pg.Offset)
	if err != nil {
		app.internalServerError(w, r, fmt.Errorf("list brands: %w", err))
		return
	}
	pg.ComputeMeta(total)

	app.jsonResponse(w, http.StatusOK, map[string]any{
		"brands":     brands,
		"pagination": pg,
	})
}

// ---------- Admin: Categories ----------

func (app *application) createCategoryHandler(w http.ResponseWriter, r *http.Request) {
	const maxBytes = 3 * 1024 * 1024 // 3MB
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("failed to parse form: %w", err))
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	name := strings.TrimSpace(r.FormValue("name"))
	slug := strings.TrimSpace(r.FormValue("slug"))
	description := strings.TrimSpace(r.FormValue("description"))
	if name == "" {
		app.badRequestResponse(w, r, fmt.Errorf("category name is required"))
		return
	}
	if slug == "" {
		slug = generateSlug(name)
	}
	if !isValidSlug(slug) {
		app.badRequestResponse(w, r, fmt.Errorf("invalid slug format"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	exists, err := app.store.Catalog.CategoryExistsByNameOrSlug(ctx, name, slug)
	if err != nil {
		app.internalServerError(w, r, fmt.Errorf("check category existence: %w", err))
		return
	}
	if exists {
		app.conflictResponse(w, r, fmt.Errorf("category with name '%s' or slug '%s' already exists", name, slug))
		return
	}

	var imageURL string
	if file, _, err := r.FormFile("image"); err == nil {
		defer file.Close()

		mime, err := sniffMIME(file)
		if err != nil {
			app.badRequestResponse(w, r, fmt.Errorf("sniff mime: %w", err))
			return
		}
		if !allowedImageMIME[mime] {
			app.badRequestResponse(w, r, fmt.Errorf("invalid image type: %s", mime))
			return
		}

		publicID := fmt.Sprintf("categories/%s_%d", slug, time.Now().UnixNano())
		url, upErr := app.uploadToCloudinaryWithID(file, publicID)
		if upErr != nil {
			app.internalServerError(w, r, fmt.Errorf("upload image: %w", upErr))
			return
		}
		imageURL = url
	}

	category := &catalog.Category{
		Name:        name,
		Slug:        slug,
		Description: optString(description),
		ImageURL:    optString(imageURL),
		IsFeatured:  r.FormValue("is_featured") == "true",
	}

	created, err := app.store.Catalog.CreateCategory(ctx, category)
	if err != nil {
		app.internalServerError(w, r, fmt.Errorf("create category: %w", err))
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/v1/admin/categories/%d", created.ID))
	app.jsonResponse(w, http.StatusCreated, created)
}

func (app *application) updateCategoryHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	categoryID, err := pathID(r, "categoryID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var in struct {
		Name        *string `json:"name"`
		Slug        *string `json:"slug"`
		Description *string `json:"description"`
		IsFeatured  *bool   `json:"is_featured"`
	}
	if err := readJSON(w, r, &in); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	category, err := app.store.Catalog.GetCategoryByID(ctx, categoryID)
	if err != nil {
		if errors.Is(err, catalog.ErrCategoryNotFound) {
			app.notFoundResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	if in.Name != nil {
		category.Name = strings.TrimSpace(*in.Name)
	}
	if in.Slug != nil {
		if !isValidSlug(*in.Slug) {
			app.badRequestResponse(w, r, fmt.Errorf("invalid slug format"))
			return
		}
		category.Slug = *in.Slug
	}
	if in.Description != nil {
		category.Description = optString(*in.Description)
	}
	if in.IsFeatured != nil {
		category.IsFeatured = *in.IsFeatured
	}

	if err := app.store.Catalog.UpdateCategory(ctx, category); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			app.conflictResponse(w, r, fmt.Errorf("category name or slug already taken"))
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, category)
}

func (app *application) deleteCategoryHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	categoryID, err := pathID(r, "categoryID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := app.store.Catalog.DeleteCategory(ctx, categoryID); err != nil {
		if errors.Is(err, catalog.ErrCategoryNotFound) {
			app.notFoundResponse(w, r, err)
			return
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			app.conflictResponse(w, r, fmt.Errorf("category is still referenced by products"))
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, map[string]string{"message": "category deleted"})
}

func (app *application) listCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	app.renderCategoryList(w, r)
}

func (app *application) adminListCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	app.renderCategoryList(w, r)
}

func (app *application) renderCategoryList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	pg := params.ParsePagination(r.URL.Query())

	categories, total, err := app.store.Catalog.ListCategories(ctx, pg.Limit, pg.Offset)
	if err != nil {
		app.internalServerError(w, r, fmt.Errorf("list categories: %w", err))
		return
	}
	pg.ComputeMeta(total)

	app.jsonResponse(w, http.StatusOK, map[string]any{
		"categories": categories,
		"pagination": pg,
	})
}

// ---------- Storefront: Products ----------

// listProductsHandler godoc
//
//	@Summary		List products
//	@Description	Paginated storefront listing with optional category, brand and audience filters.
//	@Tags			Storefront
//	@Produce		json
//	@Param			category_slug	query		string	false	"Category slug"
//	@Param			brand_slug		query		string	false	"Brand slug"
//	@Param			audience		query		string	false	"Audience"	Enums(men,women,unisex)
//	@Success		200				{object}	map[string]any
//	@Router			/products [get]
func (app *application) listProductsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	pg := params.ParsePagination(r.URL.Query())

	filter := catalog.ProductFilter{
		CategorySlug: strings.TrimSpace(r.URL.Query().Get("category_slug")),
		BrandSlug:    strings.TrimSpace(r.URL.Query().Get("brand_slug")),
		ActiveOnly:   true,
	}
	if aud := strings.TrimSpace(r.URL.Query().Get("audience")); aud != "" {
		a := catalog.Audience(aud)
		if !a.Valid() {
			app.badRequestResponse(w, r, fmt.Errorf("invalid audience %q", aud))
			return
		}
		filter.Audience = a
	}

	items, total, err := app.store.Catalog.ListProducts(ctx, filter, pg.Limit, pg.Offset)
	if err != nil {
		app.internalServerError(w, r, fmt.Errorf("list products: %w", err))
		return
	}
	pg.ComputeMeta(total)

	app.jsonResponse(w, http.StatusOK, map[string]any{
		"products":   items,
		"pagination": pg,
		"filters": map[string]any{
			"category_slug": filter.CategorySlug,
			"brand_slug":    filter.BrandSlug,
			"audience":      filter.Audience,
		},
	})
}

func (app *application) getProductDetailHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slug := chi.URLParam(r, "slug")
	if strings.TrimSpace(slug) == "" {
		app.badRequestResponse(w, r, fmt.Errorf("slug is required"))
		return
	}

	detail, err := app.store.Catalog.GetProductDetailBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			app.notFoundResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}
	if !detail.Product.IsActive {
		app.notFoundResponse(w, r, fmt.Errorf("product not found"))
		return
	}

	app.jsonResponse(w, http.StatusOK, detail)
}

// ---------- Admin: Products ----------

func (app *application) adminListProductsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	pg := params.ParsePagination(r.URL.Query())

	// Admin sees drafts too
	items, total, err := app.store.Catalog.ListProducts(ctx, catalog.ProductFilter{}, pg.Limit, pg.Offset)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	pg.ComputeMeta(total)

	app.jsonResponse(w, http.StatusOK, map[string]any{
		"products":   items,
		"pagination": pg,
	})
}

func (app *application) adminGetProductHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	productID, err := pathID(r, "productID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	p, err := app.store.Catalog.GetProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			app.notFoundResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	variants, err := app.store.Catalog.ListVariantsByProduct(ctx, productID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, map[string]any{
		"product":  p,
		"variants": variants,
	})
}

type CreateProductRequest struct {
	Name                 string  `json:"name" validate:"required,min=2,max=200"`
	NameSecondary        *string `json:"name_secondary"`
	Slug                 string  `json:"slug"`
	Description          string  `json:"description"`
	DescriptionSecondary *string `json:"description_secondary"`
	PriceCents           int64   `json:"price_cents" validate:"min=0"`
	DiscountCents        int64   `json:"discount_cents" validate:"min=0"`
	InStock              bool    `json:"in_stock"`
	IsActive             bool    `json:"is_active"`
	Audience             string  `json:"audience" validate:"required"`
	CategoryID           *int64  `json:"category_id"`
	BrandID              *int64  `json:"brand_id"`
}

func (app *application) createProductHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	var in CreateProductRequest
	if err := readJSON(w, r, &in); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(in); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	audience := catalog.Audience(in.Audience)
	if !audience.Valid() {
		app.badRequestResponse(w, r, fmt.Errorf("invalid audience %q", in.Audience))
		return
	}

	if strings.TrimSpace(in.Slug) == "" {
		in.Slug = generateSlug(in.Name)
	}
	if !isValidSlug(in.Slug) {
		app.badRequestResponse(w, r, fmt.Errorf("invalid slug"))
		return
	}

	p := &catalog.Product{
		Name:          catalog.LocalizedText{Primary: in.Name, Secondary: in.NameSecondary},
		Description:   catalog.LocalizedText{Primary: in.Description, Secondary: in.DescriptionSecondary},
		Slug:          in.Slug,
		PriceCents:    in.PriceCents,
		DiscountCents: in.DiscountCents,
		InStock:       in.InStock,
		IsActive:      in.IsActive,
		Audience:      audience,
		CategoryID:    in.CategoryID,
		BrandID:       in.BrandID,
	}

	created, err := app.store.Catalog.CreateProduct(ctx, p)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			app.conflictResponse(w, r, fmt.Errorf("product slug already taken"))
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/v1/admin/products/%d", created.ID))
	app.jsonResponse(w, http.StatusCreated, created)
}

func (app *application) updateProductHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	productID, err := pathID(r, "productID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var in struct {
		Name                 *string `json:"name"`
		NameSecondary        *string `json:"name_secondary"`
		Description          *string `json:"description"`
		DescriptionSecondary *string `json:"description_secondary"`
		Slug                 *string `json:"slug"`
		PriceCents           *int64  `json:"price_cents"`
		DiscountCents        *int64  `json:"discount_cents"`
		InStock              *bool   `json:"in_stock"`
		IsActive             *bool   `json:"is_active"`
		HasVariants          *bool   `json:"has_variants"`
		Audience             *string `json:"audience"`
		CategoryID           *int64  `json:"category_id"`
		BrandID              *int64  `json:"brand_id"`
	}
	if err := readJSON(w, r, &in); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	p, err := app.store.Catalog.GetProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			app.notFoundResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	if in.Name != nil {
		p.Name.Primary = strings.TrimSpace(*in.Name)
	}
	if in.NameSecondary != nil {
		p.Name.Secondary = optString(*in.NameSecondary)
	}
	if in.Description != nil {
		p.Description.Primary = *in.Description
	}
	if in.DescriptionSecondary != nil {
		p.Description.Secondary = optString(*in.DescriptionSecondary)
	}
	if in.Slug != nil {
		if !isValidSlug(*in.Slug) {
			app.badRequestResponse(w, r, fmt.Errorf("invalid slug"))
			return
		}
		p.Slug = *in.Slug
	}
	if in.Audience != nil {
		a := catalog.Audience(*in.Audience)
		if !a.Valid() {
			app.badRequestResponse(w, r, fmt.Errorf("invalid audience %q", *in.Audience))
			return
		}
		p.Audience = a
	}
	if in.CategoryID != nil {
		p.CategoryID = in.CategoryID
	}
	if in.BrandID != nil {
		p.BrandID = in.BrandID
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}

	// Explicit has_variants override: flips the product between derived
	// and direct price/stock mode, resyncing the cached columns.
	if in.HasVariants != nil && *in.HasVariants != p.HasVariants {
		if err := app.store.Catalog.SetHasVariants(ctx, productID, *in.HasVariants); err != nil {
			app.internalServerError(w, r, err)
			return
		}
		p.HasVariants = *in.HasVariants
	}

	// Price and stock edits only apply directly while the product has no
	// variants; with variants they are recomputed from the variant set.
	if p.HasVariants && (in.PriceCents != nil || in.DiscountCents != nil || in.InStock != nil) {
		app.badRequestResponse(w, r, fmt.Errorf("price and stock are derived from variants for this product"))
		return
	}
	if in.PriceCents != nil {
		p.PriceCents = *in.PriceCents
	}
	if in.DiscountCents != nil {
		p.DiscountCents = *in.DiscountCents
	}
	if in.InStock != nil {
		p.InStock = *in.InStock
	}

	if err := app.store.Catalog.UpdateProduct(ctx, p); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			app.conflictResponse(w, r, fmt.Errorf("product slug already taken"))
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, p)
}

func (app *application) deleteProductHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	productID, err := pathID(r, "productID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	p, err := app.store.Catalog.GetProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			app.notFoundResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	if err := app.store.Catalog.DeleteProduct(ctx, productID); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	for _, url := range p.ImageURLs {
		go func(url string) {
			if delErr := app.deletePhotoFromCloudinary(url); delErr != nil {
				app.logger.Errorw("cloudinary cleanup failed", "url", url, "err", delErr)
			}
		}(url)
	}

	app.jsonResponse(w, http.StatusOK, map[string]string{"message": "product deleted"})
}

func (app *application) uploadProductImageHandler(w http.ResponseWriter, r *http.Request) {
	const maxBytes = 5 * 1024 * 1024 // 5MB
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	productID, err := pathID(r, "productID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := r.ParseMultipartForm(maxBytes); err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("failed to parse form: %w", err))
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	if _, err := app.store.Catalog.GetProductByID(ctx, productID); err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			app.notFoundResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("image file is required"))
		return
	}
	defer file.Close()

	mime, err := sniffMIME(file)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("sniff mime: %w", err))
		return
	}
	if !allowedImageMIME[mime] {
		app.badRequestResponse(w, r, fmt.Errorf("invalid image type: %s", mime))
		return
	}

	publicID := fmt.Sprintf("products/product_%d_image_%d", productID, time.Now().UnixNano())
	url, err := app.uploadToCloudinaryWithID(file, publicID)
	if err != nil {
		app.internalServerError(w, r, fmt.Errorf("upload image: %w", err))
		return
	}

	if err := app.store.Catalog.AddProductImage(ctx, productID, url); err != nil {
		go func(url string) {
			if delErr := app.deletePhotoFromCloudinary(url); delErr != nil {
				app.logger.Errorw("cloudinary cleanup failed", "url", url, "err", delErr)
			}
		}(url)
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusCreated, map[string]string{"image_url": url})
}

// DELETE /v1/admin/products/{productID}/images?image_url={url}
func (app *application) deleteProductImageHandler(w http.ResponseWriter, r *http.Request) {
	productID, err := pathID(r, "productID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	imageURL := strings.TrimSpace(r.URL.Query().Get("image_url"))
	if imageURL == "" {
		app.badRequestResponse(w, r, fmt.Errorf("image_url query parameter is required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := app.store.Catalog.RemoveProductImage(ctx, productID, imageURL); err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			app.notFoundResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	if err := app.deletePhotoFromCloudinary(imageURL); err != nil {
		app.logger.Errorw("cloudinary cleanup failed", "url", imageURL, "err", err)
	}

	app.jsonResponse(w, http.StatusOK, map[string]string{"message": "image removed"})
}
