package http

import (
	"github.com/gin-gonic/gin"

	"github.com/stockhubapp/stockhub/internal/http/middlewares"
	"github.com/stockhubapp/stockhub/internal/query"
	"github.com/stockhubapp/stockhub/internal/resource"
)

// Resource configurations. Everything below is data handed to the generic
// engine: tables, key columns, sort priorities, search columns and the
// query modifiers that give each resource its joined display shape.

// modelDetails widens model rows with their brand and category names.
var modelDetails = resource.ModifierFunc(func(c *gin.Context, b *query.Builder) *query.Builder {
	return b.
		Select("models.*", "brands.name AS brand", "categories.name AS category").
		LeftJoin("brands", "brands.id = models.brand_id").
		LeftJoin("categories", "categories.id = models.category_id")
})

// itemDetails widens item rows with their model name and honors the
// ?rented query param: true keeps only items inside an active rental
// window, false only items outside one.
var itemDetails = resource.ModifierFunc(func(c *gin.Context, b *query.Builder) *query.Builder {
	b = b.
		Select("items.*", "models.name AS model").
		LeftJoin("models", "models.id = items.model_id")

	switch c.Query("rented") {
	case "true":
		b = b.WhereRaw(
			"EXISTS (SELECT 1 FROM rentals WHERE rentals.item_id = items.id AND rentals.started_at <= NOW() AND rentals.due_back > NOW())")
	case "false":
		b = b.WhereRaw(
			"NOT EXISTS (SELECT 1 FROM rentals WHERE rentals.item_id = items.id AND rentals.started_at <= NOW() AND rentals.due_back > NOW())")
	}

	return b
})

// kitContents widens kit rows with the model and brand names of their
// member items.
var kitContents = resource.ModifierFunc(func(c *gin.Context, b *query.Builder) *query.Builder {
	return b.
		Select("kits.*", "models.name AS model", "brands.name AS brand").
		LeftJoin("kit_items", "kit_items.kit_id = kits.id").
		LeftJoin("models", "models.id = kit_items.model_id").
		LeftJoin("brands", "brands.id = models.brand_id")
})

// rentalDetails widens rental rows with the rented item's name.
var rentalDetails = resource.ModifierFunc(func(c *gin.Context, b *query.Builder) *query.Builder {
	return b.
		Select("rentals.*", "items.name AS item").
		LeftJoin("items", "items.id = rentals.item_id")
})

// userPublic narrows user rows to their non-sensitive columns.
var userPublic = resource.ModifierFunc(func(c *gin.Context, b *query.Builder) *query.Builder {
	return b.Select(
		"users.id",
		"users.email",
		"users.first_name",
		"users.last_name",
		"users.organization_id",
		"users.role_id",
		"users.created_at",
		"users.updated_at",
	)
})

// MountResources registers the CRUD surface of every inventory resource on
// the authenticated group.
func MountResources(rg *gin.RouterGroup, gw *resource.Gateway, authMW *middlewares.AuthMiddleware) {
	resource.Mount(rg, "/categories", gw, "categories", "id", resource.Options{
		SortBy:        []query.Order{{Column: "categories.name", Ascending: true}},
		SearchColumns: []string{"categories.name"},
	})

	resource.Mount(rg, "/brands", gw, "brands", "id", resource.Options{
		SortBy:        []query.Order{{Column: "brands.name", Ascending: true}},
		SearchColumns: []string{"brands.name"},
	})

	resource.Mount(rg, "/fields", gw, "fields", "id", resource.Options{
		SortBy:        []query.Order{{Column: "fields.name", Ascending: true}},
		SearchColumns: []string{"fields.name"},
	})

	resource.Mount(rg, "/models", gw, "models", "id", resource.Options{
		Modify: modelDetails,
		SortBy: []query.Order{
			{Column: "brands.name", Ascending: true},
			{Column: "models.name", Ascending: true},
		},
		SearchColumns: []string{"models.name", "brands.name"},
	})

	resource.Mount(rg, "/items", gw, "items", "id", resource.Options{
		Modify: itemDetails,
		SortBy: []query.Order{
			{Column: "models.name", Ascending: true},
			{Column: "items.serial", Ascending: true},
		},
		SearchColumns: []string{"items.name", "items.serial", "models.name"},
	})

	resource.Mount(rg, "/kits", gw, "kits", "id", resource.Options{
		Modify: kitContents,
		SortBy: []query.Order{
			{Column: "kits.name", Ascending: true},
			{Column: "models.name", Ascending: true},
		},
		SearchColumns: []string{"kits.name"},
	})

	resource.Mount(rg, "/rentals", gw, "rentals", "id", resource.Options{
		Modify: rentalDetails,
		SortBy: []query.Order{
			{Column: "rentals.due_back", Ascending: true},
			{Column: "items.name", Ascending: true},
		},
		SearchColumns: []string{"items.name"},
		Messages: resource.Messages{
			NotFound: "Rental does not exist",
			Deleted:  "Rental closed",
		},
	})

	// Organizations have no tenant column and are admin territory.
	adminOnly := rg.Group("", authMW.RequireAdmin())

	resource.Mount(adminOnly, "/organizations", gw, "organizations", "id", resource.Options{
		Unscoped:      true,
		SortBy:        []query.Order{{Column: "organizations.name", Ascending: true}},
		SearchColumns: []string{"organizations.name"},
		Messages: resource.Messages{
			Conflict: "Organization already exists",
		},
	})

	// Users are read-only through the engine: listing is admin-only,
	// fetching one is the caller themselves or an admin.
	usersEndpoint := resource.NewEndpoint(gw, "users", "id", resource.Options{
		Modify:        userPublic,
		SortBy:        []query.Order{{Column: "users.last_name", Ascending: true}},
		SearchColumns: []string{"users.first_name", "users.last_name", "users.email"},
	})

	usersGrp := rg.Group("/users")
	usersGrp.GET("", authMW.RequireAdmin(), usersEndpoint.List)
	usersGrp.GET("/:id", authMW.RequireSelfOrAdmin("id"), usersEndpoint.GetOne)
}
