package models

// GeneratedFile is one file of a multi-file generation.
type GeneratedFile struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// GenerationResult is the payload of one AI code-generation request. It is
// never persisted.
type GenerationResult struct {
	Code    string          `json:"code"`
	Preview string          `json:"preview"`
	Files   []GeneratedFile `json:"files"`
}

// Template is an entry of the starter template catalog.
type Template struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Status      string   `json:"status"`
}

var Templates = []Template{
	{
		ID:          "landing",
		Name:        "SaaS Landing Page",
		Description: "Modern landing page with hero, features, pricing, and testimonials",
		Tags:        []string{"React", "Tailwind"},
		Status:      "Popular",
	},
	{
		ID:          "dashboard",
		Name:        "Admin Dashboard",
		Description: "Complete admin interface with charts, tables, and user management",
		Tags:        []string{"React", "Chart.js"},
		Status:      "Pro",
	},
	{
		ID:          "ecommerce",
		Name:        "E-commerce Store",
		Description: "Full-featured online store with product catalog and payment integration",
		Tags:        []string{"Next.js", "Stripe"},
		Status:      "New",
	},
}
