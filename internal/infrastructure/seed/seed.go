// Package seed holds the sample marketplace used to populate an empty store
// and to stand in for live data when the store cannot be reached.
package seed

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"artisanx/internal/domain/entity"
	"artisanx/internal/domain/repository"
	"artisanx/pkg/logger"
)

type Dataset struct {
	Artisans   []entity.User
	Volunteers []entity.User
	Products   []entity.Product
	Projects   []entity.Project
}

// Clone returns copies so callers can hand the slices out freely.
func (d Dataset) Clone() Dataset {
	c := Dataset{
		Artisans:   make([]entity.User, len(d.Artisans)),
		Volunteers: make([]entity.User, len(d.Volunteers)),
		Products:   append([]entity.Product(nil), d.Products...),
		Projects:   make([]entity.Project, len(d.Projects)),
	}
	for i := range d.Artisans {
		c.Artisans[i] = *d.Artisans[i].Clone()
	}
	for i := range d.Volunteers {
		c.Volunteers[i] = *d.Volunteers[i].Clone()
	}
	for i, p := range d.Projects {
		p.SkillsNeeded = append([]string(nil), p.SkillsNeeded...)
		c.Projects[i] = p
	}
	return c
}

var added = time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)

func Default() Dataset {
	return Dataset{
		Artisans: []entity.User{
			{
				ID: "artisan_1", Name: "Meera Joshi", Role: entity.RoleArtisan, ProfileComplete: true,
				Avatar: "https://images.unsplash.com/photo-1544005313-94ddf0286df2?w=200",
				Craft:  "Blue Pottery", Location: "Jaipur, Rajasthan",
				Bio:       "Third-generation potter keeping the cobalt glazes of Jaipur alive.",
				Portfolio: []string{"https://images.unsplash.com/photo-1565193566173-7a0ee3dbe261?w=600"},
			},
			{
				ID: "artisan_2", Name: "Arjun Das", Role: entity.RoleArtisan, ProfileComplete: true,
				Avatar: "https://images.unsplash.com/photo-1506794778202-cad84cf45f1d?w=200",
				Craft:  "Dokra Metal Casting", Location: "Bankura, West Bengal",
				Bio:       "Lost-wax brass casting using techniques older than four millennia.",
				Portfolio: []string{"https://images.unsplash.com/photo-1610701596007-11502861dcfa?w=600"},
			},
			{
				ID: "artisan_3", Name: "Lakshmi Narayanan", Role: entity.RoleArtisan, ProfileComplete: true,
				Avatar: "https://images.unsplash.com/photo-1438761681033-6461ffad8d80?w=200",
				Craft:  "Kanchipuram Silk Weaving", Location: "Kanchipuram, Tamil Nadu",
				Bio:       "Handloom weaver of temple-border silk sarees.",
				Portfolio: []string{"https://images.unsplash.com/photo-1610030469983-98e550d6193c?w=600"},
			},
		},
		Volunteers: []entity.User{
			{
				ID: "volunteer_1", Name: "Priya Sharma", Role: entity.RoleVolunteer, ProfileComplete: true,
				Avatar: "https://images.unsplash.com/photo-1494790108377-be9c29b29330?w=200",
				Bio:    "Photographer helping makers show their work online.",
				Skills: []string{"Photography", "Social Media"},
			},
			{
				ID: "volunteer_2", Name: "Rohan Mehta", Role: entity.RoleVolunteer, ProfileComplete: true,
				Avatar: "https://images.unsplash.com/photo-1500648767791-00dcc994a43e?w=200",
				Bio:    "Web developer building simple storefronts.",
				Skills: []string{"Web Development", "SEO"},
			},
			{
				ID: "volunteer_3", Name: "Ananya Iyer", Role: entity.RoleVolunteer, ProfileComplete: true,
				Avatar: "https://images.unsplash.com/photo-1534528741775-53994a69daeb?w=200",
				Bio:    "Brand designer and copywriter.",
				Skills: []string{"Branding", "Copywriting", "Graphic Design"},
			},
		},
		Products: []entity.Product{
			{ID: "1", Name: "Cobalt Floral Vase", Price: 2400, Category: "Pottery", ArtisanID: "artisan_1", DateAdded: added,
				Description: "Hand-painted quartz-clay vase with traditional floral motifs.",
				Image:       "https://images.unsplash.com/photo-1578749556568-bc2c40e68b61?w=600"},
			{ID: "2", Name: "Dokra Horse Figurine", Price: 3200, Category: "Metalwork", ArtisanID: "artisan_2", DateAdded: added,
				Description: "Brass horse cast by the lost-wax method.",
				Image:       "https://images.unsplash.com/photo-1582719478250-c89cae4dc85b?w=600"},
			{ID: "3", Name: "Temple Border Silk Saree", Price: 18500, Category: "Textiles", ArtisanID: "artisan_3", DateAdded: added,
				Description: "Pure mulberry silk with zari temple border.",
				Image:       "https://images.unsplash.com/photo-1610030469983-98e550d6193c?w=600"},
			{ID: "4", Name: "Blue Pottery Tile Set", Price: 1800, Category: "Pottery", ArtisanID: "artisan_1", DateAdded: added,
				Description: "Set of four decorative tiles.",
				Image:       "https://images.unsplash.com/photo-1565193566173-7a0ee3dbe261?w=600"},
		},
		Projects: []entity.Project{
			{ID: "1", Title: "Product Photography for Pottery Catalogue", PostedBy: "Meera Joshi", Status: entity.ProjectOpen,
				Description:  "Shoot the spring collection for an online catalogue.",
				SkillsNeeded: []string{"Photography"}},
			{ID: "2", Title: "Online Store for Dokra Collective", PostedBy: "Arjun Das", Status: entity.ProjectOpen,
				Description:  "Build a small storefront for a casting collective.",
				SkillsNeeded: []string{"Web Development", "SEO"}},
			{ID: "3", Title: "Brand Story for Handloom Sarees", PostedBy: "Lakshmi Narayanan", Status: entity.ProjectOpen,
				Description:  "Write the story and design the labels of a weaving family.",
				SkillsNeeded: []string{"Branding", "Copywriting"}},
		},
	}
}

// Populate writes the dataset in one batch if the users collection is
// empty. It reports whether anything was written.
func Populate(ctx context.Context, store repository.DocumentStore, data Dataset) (bool, error) {
	users, err := store.Find(ctx, repository.NewQuery(repository.CollectionUsers))
	if err != nil {
		return false, errors.Wrap(err, "check users collection")
	}
	if len(users) > 0 {
		return false, nil
	}

	logger.Info("Database is empty. Seeding initial data...")
	batch := store.Batch()
	for _, u := range append(append([]entity.User(nil), data.Artisans...), data.Volunteers...) {
		batch.Set(repository.Doc(repository.CollectionUsers, u.ID), u)
	}
	for _, p := range data.Products {
		batch.Set(repository.Doc(repository.CollectionProducts, p.ID), p)
	}
	for _, p := range data.Projects {
		batch.Set(repository.Doc(repository.CollectionProjects, p.ID), p)
	}
	if err := batch.Commit(ctx); err != nil {
		return false, errors.Wrap(err, "seed database")
	}
	logger.Info("Seeded %d users, %d products, %d projects", len(data.Artisans)+len(data.Volunteers), len(data.Products), len(data.Projects))
	return true, nil
}
