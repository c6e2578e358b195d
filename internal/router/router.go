package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/online-store/internal/config"
	"github.com/iliyamo/online-store/internal/handler"    // import the handlers that implement business logic
	"github.com/iliyamo/online-store/internal/middleware" // import middleware for JWT authentication and role enforcement
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Map the GET request at path "/healthz" to the Health handler.  This
	// endpoint can be used by load balancers or monitoring systems to verify
	// that the service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the token-lifecycle routes and the protected /v1
// account endpoint.  Unauthenticated operations live under /v1/auth and are
// rate limited per client IP; protected endpoints live under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string, rl config.RateLimitConfig, rdb *redis.Client) {
	// Create a route group under the /v1/auth prefix for operations that do
	// not require an existing session.  Each of these handlers is
	// responsible for creating, exchanging or revoking credentials, so the
	// whole group sits behind the Redis rate limiter to slow down
	// credential-stuffing and reset-code guessing.
	g := e.Group("/v1/auth", middleware.NewRateLimit(rl, rdb))
	// Register a POST endpoint to handle account creation at /v1/auth/signup.
	g.POST("/signup", a.Signup)
	// Register a POST endpoint to handle sign-in at /v1/auth/signin.
	g.POST("/signin", a.Signin)
	// Register a POST endpoint to rotate the refresh token and mint a new
	// access token at /v1/auth/refresh.  The refresh cookie is scoped to
	// exactly this path.
	g.POST("/refresh", a.Refresh)
	// Register a POST endpoint to terminate the session at /v1/auth/signout.
	// Signout clears the auth cookies and is idempotent, so it does not
	// require a valid JWT.
	g.POST("/signout", a.Signout)
	// Password recovery: request a reset credential, then redeem it.
	g.POST("/forgot-password", a.ForgotPassword)
	g.POST("/reset-password", a.ResetPassword)

	// Create another group for routes that require a valid access token.  All
	// handlers registered on this group will execute the JWTAuth middleware
	// before being invoked.  Protected endpoints live under /v1.
	auth := e.Group("/v1")
	// Apply the JWTAuth middleware to the protected group using the provided secret.
	auth.Use(middleware.JWTAuth(jwtSecret))
	// Both roles may read their own account.
	auth.Use(middleware.RequireRole("USER", "ADMIN"))
	// Register a GET endpoint at /v1/me that returns the authenticated user's information.
	auth.GET("/me", a.Me)
}

// RegisterCart registers the cart routes.  The cart group accepts both
// authenticated users and anonymous visitors: OptionalJWT extracts the user
// id when a token is present, and CartSession supplies (or synthesizes) a
// session id otherwise.  Only the merge endpoint demands a JWT, since it
// folds an anonymous cart into a user cart.
func RegisterCart(e *echo.Echo, h *handler.CartHandler, jwtSecret string) {
	g := e.Group("/v1/cart", middleware.OptionalJWT(jwtSecret), middleware.CartSession())
	// Resolve (lazily creating) and read the active cart.
	g.GET("", h.GetCart)
	// Add a product; repeated adds of the same product accumulate quantity.
	g.POST("/items", h.AddItem)
	// Update or remove a single item by its id.
	g.PUT("/items/:itemId", h.UpdateItem)
	g.DELETE("/items/:itemId", h.RemoveItem)
	// Empty the cart without retiring it.
	g.DELETE("/clear", h.ClearCart)
	// Retire the active cart; the next read creates a fresh one.
	g.DELETE("", h.DeactivateCart)
	// Computed total in cents from the stored price snapshots.
	g.GET("/total", h.GetTotal)
	// Merge the anonymous session cart into the caller's user cart.  This is
	// the one cart route that requires authentication.
	e.POST("/v1/cart/merge", h.MergeCarts, middleware.JWTAuth(jwtSecret))
}

// RegisterCatalog registers the authenticated catalog management routes.
// Categories are shared; products are owner-scoped, so every product write
// checks the caller's id against the row.
func RegisterCatalog(e *echo.Echo, cat *handler.CategoryHandler, p *handler.ProductHandler, jwtSecret string) {
	g := e.Group("/v1", middleware.JWTAuth(jwtSecret), middleware.RequireRole("USER", "ADMIN"))

	g.POST("/categories", cat.CreateCategory)
	g.GET("/categories", cat.ListCategories)
	g.GET("/categories/:id", cat.GetCategory)
	g.PATCH("/categories/:id", cat.UpdateCategory)
	g.DELETE("/categories/:id", cat.DeleteCategory)

	g.POST("/products", p.CreateProduct)
	g.GET("/products", p.ListProducts)
	g.GET("/products/:id", p.GetProduct)
	g.PUT("/products/:id", p.UpdateProduct)
	g.DELETE("/products/:id", p.DeleteProduct)
}

// RegisterPublic registers unauthenticated browse endpoints on the provided
// Echo instance.  These routes return sanitized catalog data for guests and
// sit behind the Redis response cache, since they are read-heavy and
// identical for every visitor.
func RegisterPublic(e *echo.Echo, p *handler.PublicCatalogHandler, cc config.CacheConfig, rdb *redis.Client) {
	g := e.Group("/v1/catalog", middleware.NewRedisCache(cc, rdb))
	// Expose the list of all available products.
	g.GET("/products", p.BrowseProducts)
	// One available product by id; unavailable products answer 404 here.
	g.GET("/products/:id", p.BrowseProduct)
	// All categories.
	g.GET("/categories", p.BrowseCategories)
}
