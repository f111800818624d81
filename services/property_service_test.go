package services

import (
	"context"
	"strings"
	"testing"

	"sharenest-backend/models"
)

func TestPropertyCreateAndFindOne(t *testing.T) {
	db := newTestDB(t)
	svc := NewPropertyService(db, nil)
	landlord := seedUser(t, db, "landlord@example.com", models.RoleLandlord)

	property, err := svc.Create(landlord.ID, CreatePropertyInput{
		Title:         "Rooftop Studio",
		Description:   "Bright studio with a terrace",
		Category:      "studio",
		City:          "Rotterdam",
		Price:         950,
		Bedrooms:      1,
		Bathrooms:     1,
		Amenities:     []byte(`["wifi","dishwasher"]`),
		AvailableFrom: "2024-06-01",
	})
	if err != nil {
		t.Fatalf("create property: %v", err)
	}

	if !property.IsActive || !property.IsAvailable {
		t.Error("new property must start active and available")
	}
	if property.Owner.ID != landlord.ID {
		t.Errorf("owner not preloaded: %d", property.Owner.ID)
	}

	_, err = svc.Create(landlord.ID, CreatePropertyInput{
		Title:         "Bad Dates",
		Description:   "x",
		Category:      "studio",
		City:          "Rotterdam",
		Price:         1,
		AvailableFrom: "June first",
	})
	assertKind(t, err, KindValidation)
}

func TestPropertyUpdateOwnerOnly(t *testing.T) {
	db := newTestDB(t)
	svc := NewPropertyService(db, nil)
	landlord := seedUser(t, db, "landlord@example.com", models.RoleLandlord)
	other := seedUser(t, db, "other@example.com", models.RoleLandlord)
	property := seedProperty(t, db, landlord.ID, "2024-06-01", nil)

	newPrice := 1400.0
	_, err := svc.Update(property.ID, other.ID, UpdatePropertyInput{Price: &newPrice})
	assertKind(t, err, KindForbidden)

	updated, err := svc.Update(property.ID, landlord.ID, UpdatePropertyInput{Price: &newPrice})
	if err != nil {
		t.Fatalf("owner update: %v", err)
	}
	if updated.Price != newPrice {
		t.Errorf("price = %v, want %v", updated.Price, newPrice)
	}
	if updated.Title != property.Title {
		t.Errorf("untouched field changed: %q", updated.Title)
	}
}

func TestPropertyRemoveCascades(t *testing.T) {
	db := newTestDB(t)
	svc := NewPropertyService(db, nil)
	landlord := seedUser(t, db, "landlord@example.com", models.RoleLandlord)
	tenant := seedUser(t, db, "tenant@example.com", models.RoleTenant)
	property := seedProperty(t, db, landlord.ID, "2024-06-01", nil)

	if err := db.Create(&models.PropertyImage{PropertyID: property.ID, ImageURL: "https://img/1.jpg"}).Error; err != nil {
		t.Fatalf("seed image: %v", err)
	}
	if err := db.Create(&models.Favorite{UserID: tenant.ID, PropertyID: property.ID}).Error; err != nil {
		t.Fatalf("seed favorite: %v", err)
	}

	err := svc.Remove(property.ID, tenant.ID)
	assertKind(t, err, KindForbidden)

	if err := svc.Remove(property.ID, landlord.ID); err != nil {
		t.Fatalf("owner delete: %v", err)
	}

	var images, favorites int64
	db.Model(&models.PropertyImage{}).Where("property_id = ?", property.ID).Count(&images)
	db.Model(&models.Favorite{}).Where("property_id = ?", property.ID).Count(&favorites)
	if images != 0 || favorites != 0 {
		t.Errorf("expected cascade delete, images=%d favorites=%d", images, favorites)
	}
}

func TestPropertySearchFilters(t *testing.T) {
	db := newTestDB(t)
	svc := NewPropertyService(db, nil)
	landlord := seedUser(t, db, "landlord@example.com", models.RoleLandlord)

	cheap := seedProperty(t, db, landlord.ID, "2024-06-01", nil)
	db.Model(cheap).Updates(map[string]interface{}{"title": "Cheap Room", "price": 500, "city": "Utrecht"})

	expensive := seedProperty(t, db, landlord.ID, "2024-06-01", nil)
	db.Model(expensive).Updates(map[string]interface{}{"title": "Penthouse", "price": 3000, "city": "Amsterdam"})

	hidden := seedProperty(t, db, landlord.ID, "2024-06-01", nil)
	db.Model(hidden).Updates(map[string]interface{}{"title": "Delisted", "is_active": false})

	all, err := svc.Search(PropertySearchInput{})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if all.Count != 2 {
		t.Errorf("inactive listings must be excluded, count=%d", all.Count)
	}

	byCity, err := svc.Search(PropertySearchInput{City: "utrecht"})
	if err != nil {
		t.Fatalf("search by city: %v", err)
	}
	if byCity.Count != 1 || byCity.Rows[0].ID != cheap.ID {
		t.Errorf("city filter wrong: count=%d", byCity.Count)
	}

	byPrice, err := svc.Search(PropertySearchInput{MinPrice: 1000})
	if err != nil {
		t.Fatalf("search by price: %v", err)
	}
	if byPrice.Count != 1 || byPrice.Rows[0].ID != expensive.ID {
		t.Errorf("price filter wrong: count=%d", byPrice.Count)
	}

	byQuery, err := svc.Search(PropertySearchInput{Query: "Penthouse"})
	if err != nil {
		t.Fatalf("search by query: %v", err)
	}
	if byQuery.Count != 1 {
		t.Errorf("text filter wrong: count=%d", byQuery.Count)
	}
}

func TestPropertySearchPagination(t *testing.T) {
	db := newTestDB(t)
	svc := NewPropertyService(db, nil)
	landlord := seedUser(t, db, "landlord@example.com", models.RoleLandlord)
	for i := 0; i < 5; i++ {
		seedProperty(t, db, landlord.ID, "2024-06-01", nil)
	}

	page1, err := svc.Search(PropertySearchInput{Page: 1, Limit: 2})
	if err != nil {
		t.Fatalf("page 1: %v", err)
	}
	if page1.Count != 5 || len(page1.Rows) != 2 {
		t.Errorf("page 1: count=%d rows=%d", page1.Count, len(page1.Rows))
	}

	page3, err := svc.Search(PropertySearchInput{Page: 3, Limit: 2})
	if err != nil {
		t.Fatalf("page 3: %v", err)
	}
	if len(page3.Rows) != 1 {
		t.Errorf("page 3: rows=%d, want 1", len(page3.Rows))
	}
}

func TestToggleFavorite(t *testing.T) {
	db := newTestDB(t)
	svc := NewPropertyService(db, nil)
	landlord := seedUser(t, db, "landlord@example.com", models.RoleLandlord)
	tenant := seedUser(t, db, "tenant@example.com", models.RoleTenant)
	property := seedProperty(t, db, landlord.ID, "2024-06-01", nil)

	// Adding twice stays a single row.
	if err := svc.ToggleFavorite(tenant.ID, property.ID, true); err != nil {
		t.Fatalf("add favorite: %v", err)
	}
	if err := svc.ToggleFavorite(tenant.ID, property.ID, true); err != nil {
		t.Fatalf("re-add favorite: %v", err)
	}

	favorites, err := svc.GetUserFavorites(tenant.ID)
	if err != nil {
		t.Fatalf("list favorites: %v", err)
	}
	if len(favorites) != 1 || favorites[0].ID != property.ID {
		t.Errorf("favorites = %d entries", len(favorites))
	}

	if err := svc.ToggleFavorite(tenant.ID, property.ID, false); err != nil {
		t.Fatalf("remove favorite: %v", err)
	}
	favorites, err = svc.GetUserFavorites(tenant.ID)
	if err != nil {
		t.Fatalf("list favorites: %v", err)
	}
	if len(favorites) != 0 {
		t.Errorf("favorites not cleared: %d entries", len(favorites))
	}
}

func TestUploadImagesCapped(t *testing.T) {
	db := newTestDB(t)
	store := &fakeImageStore{}
	svc := NewPropertyService(db, store)
	landlord := seedUser(t, db, "landlord@example.com", models.RoleLandlord)
	other := seedUser(t, db, "other@example.com", models.RoleLandlord)
	property := seedProperty(t, db, landlord.ID, "2024-06-01", nil)

	ctx := context.Background()
	two := []ImageUpload{
		{File: strings.NewReader("a")},
		{File: strings.NewReader("b")},
	}

	_, err := svc.UploadImages(ctx, property.ID, other.ID, two)
	assertKind(t, err, KindForbidden)

	images, err := svc.UploadImages(ctx, property.ID, landlord.ID, two)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if len(images) != 2 {
		t.Fatalf("expected 2 images, got %d", len(images))
	}
	if images[0].SortOrder != 0 || images[1].SortOrder != 1 {
		t.Errorf("sort order wrong: %d, %d", images[0].SortOrder, images[1].SortOrder)
	}

	// Third slot is the last one.
	_, err = svc.UploadImages(ctx, property.ID, landlord.ID, two)
	assertKind(t, err, KindValidation)

	one := []ImageUpload{{File: strings.NewReader("c")}}
	images, err = svc.UploadImages(ctx, property.ID, landlord.ID, one)
	if err != nil {
		t.Fatalf("upload third image: %v", err)
	}
	if images[0].SortOrder != 2 {
		t.Errorf("third image sort order = %d, want 2", images[0].SortOrder)
	}
}

func TestDeleteImage(t *testing.T) {
	db := newTestDB(t)
	store := &fakeImageStore{}
	svc := NewPropertyService(db, store)
	landlord := seedUser(t, db, "landlord@example.com", models.RoleLandlord)
	property := seedProperty(t, db, landlord.ID, "2024-06-01", nil)

	image := models.PropertyImage{PropertyID: property.ID, ImageURL: "https://img/1.jpg", CloudinaryPublicID: "properties/1"}
	if err := db.Create(&image).Error; err != nil {
		t.Fatalf("seed image: %v", err)
	}

	err := svc.DeleteImage(context.Background(), 9999, property.ID, landlord.ID)
	if err != ErrPropertyImageNotFound {
		t.Errorf("expected %v, got %v", ErrPropertyImageNotFound, err)
	}

	if err := svc.DeleteImage(context.Background(), image.ID, property.ID, landlord.ID); err != nil {
		t.Fatalf("delete image: %v", err)
	}
	if len(store.deleted) != 1 || store.deleted[0] != "properties/1" {
		t.Errorf("remote delete not attempted: %v", store.deleted)
	}

	var count int64
	db.Model(&models.PropertyImage{}).Where("id = ?", image.ID).Count(&count)
	if count != 0 {
		t.Error("image row still present")
	}
}

func TestGetFeaturedLimit(t *testing.T) {
	db := newTestDB(t)
	svc := NewPropertyService(db, nil)
	landlord := seedUser(t, db, "landlord@example.com", models.RoleLandlord)
	for i := 0; i < 8; i++ {
		seedProperty(t, db, landlord.ID, "2024-06-01", nil)
	}

	featured, err := svc.GetFeatured()
	if err != nil {
		t.Fatalf("featured: %v", err)
	}
	if len(featured) != 6 {
		t.Errorf("featured = %d listings, want 6", len(featured))
	}
}
