package categories

// Fixture represents a predefined set of categories for one kind of business.
type Fixture interface {
	// Name returns the fixture's descriptive name.
	Name() string

	// Revenue returns the revenue category names in this fixture.
	Revenue() []CategoryName

	// Expense returns the expense category names in this fixture.
	Expense() []CategoryName
}

type fixture struct {
	name    string
	revenue []CategoryName
	expense []CategoryName
}

func (f *fixture) Name() string            { return f.name }
func (f *fixture) Revenue() []CategoryName { return f.revenue }
func (f *fixture) Expense() []CategoryName { return f.expense }

// Predefined fixtures for common test scenarios.
var (
	// FixtureMinimal has one category of each kind.
	FixtureMinimal = &fixture{
		name:    "Minimal",
		revenue: []CategoryName{CategoryHaircut},
		expense: []CategoryName{CategoryRent},
	}

	// FixtureBarbershop mirrors a typical barbershop catalog.
	FixtureBarbershop = &fixture{
		name:    "Barbershop",
		revenue: []CategoryName{CategoryHaircut, CategoryBeard, CategoryProducts},
		expense: []CategoryName{CategoryRent, CategorySupplies, CategoryElectric},
	}

	// FixtureCarWash mirrors a typical car wash catalog.
	FixtureCarWash = &fixture{
		name:    "CarWash",
		revenue: []CategoryName{CategoryWash},
		expense: []CategoryName{CategoryRent, CategoryElectric},
	}
)
