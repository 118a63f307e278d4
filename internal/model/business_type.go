package model

// BusinessType is one entry of the fixed catalog of supported businesses.
type BusinessType struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
	Slug string `db:"slug" json:"slug"`
}

// Well-known business type identifiers.
const (
	BusinessTypeBarbershop  = "04c82ce2-c099-44ca-85ce-b48549e5a592"
	BusinessTypeCarWash     = "1b4d20d8-8b1a-40ac-9485-e3a11a6510a5"
	BusinessTypeParking     = "e9f13adb-5f8c-4a26-b7c0-447397f276e2"
	BusinessTypeAesthetics  = "de8e8986-ee3d-4473-a09e-c81abb071de4"
	BusinessTypeBeautySalon = "7e1d1f77-4721-47cc-8173-393074cdae13"
)

// DefaultBusinessTypes is the catalog seeded into a fresh database.
var DefaultBusinessTypes = []BusinessType{
	{ID: BusinessTypeBarbershop, Name: "Barbearia", Slug: "barbearia"},
	{ID: BusinessTypeCarWash, Name: "Lava Rápido", Slug: "lavarapido"},
	{ID: BusinessTypeParking, Name: "Estacionamento", Slug: "estacionamento"},
	{ID: BusinessTypeAesthetics, Name: "Estética", Slug: "estetica"},
	{ID: BusinessTypeBeautySalon, Name: "Salão de Beleza", Slug: "salao-beleza"},
}

// Dashboard routes.
const (
	AdminRoute     = "/admin"
	DashboardRoute = "/dashboard"
)

// HomeRoute returns where a user lands after login: admins go to the admin
// area, everyone else to the dashboard of their business type, or the generic
// dashboard when the type has no dedicated one.
func HomeRoute(u *User, types []BusinessType) string {
	if u.IsAdmin {
		return AdminRoute
	}
	for _, bt := range types {
		if bt.ID == u.BusinessTypeID && bt.Slug != "" {
			return DashboardRoute + "/" + bt.Slug
		}
	}
	return DashboardRoute
}
