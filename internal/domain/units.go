package domain

// Unit is a measurement unit for ingredient quantities. Stock and recipe
// quantities are always stored in the family's base unit; sub-units exist
// only for capture and display.
type Unit string

const (
	UnitKilogram   Unit = "kg"
	UnitGram       Unit = "g"
	UnitLiter      Unit = "l"
	UnitMilliliter Unit = "ml"
	UnitCount      Unit = "unit"
	UnitCurrency   Unit = "currency"
)

// UnitFamily groups units that convert between each other.
type UnitFamily string

const (
	FamilyMass     UnitFamily = "mass"
	FamilyVolume   UnitFamily = "volume"
	FamilyCount    UnitFamily = "count"
	FamilyCurrency UnitFamily = "currency"
	FamilyUnknown  UnitFamily = "unknown"
)

const subUnitFactor = 1000

// Family returns the conversion family a unit belongs to.
func (u Unit) Family() UnitFamily {
	switch u {
	case UnitKilogram, UnitGram:
		return FamilyMass
	case UnitLiter, UnitMilliliter:
		return FamilyVolume
	case UnitCount:
		return FamilyCount
	case UnitCurrency:
		return FamilyCurrency
	default:
		return FamilyUnknown
	}
}

// Base returns the canonical storage unit for u's family.
func (u Unit) Base() Unit {
	switch u.Family() {
	case FamilyMass:
		return UnitKilogram
	case FamilyVolume:
		return UnitLiter
	default:
		return u
	}
}

// SubUnit returns the family's display sub-unit and whether one exists.
func (u Unit) SubUnit() (Unit, bool) {
	switch u.Family() {
	case FamilyMass:
		return UnitGram, true
	case FamilyVolume:
		return UnitMilliliter, true
	default:
		return u, false
	}
}

// IsValid reports whether u is one of the known units.
func (u Unit) IsValid() bool {
	return u.Family() != FamilyUnknown
}

// ToBase converts a quantity entered in unit into the family's base unit.
// Count-like units pass through unchanged.
func ToBase(unit Unit, qty float64) (float64, error) {
	if !unit.IsValid() {
		return 0, &InvalidUnitConversionError{From: unit, To: unit.Base()}
	}
	if unit == unit.Base() {
		return qty, nil
	}
	return qty / subUnitFactor, nil
}

// ToDisplay converts a base-unit quantity into the unit it should be shown
// in. Quantities below one base unit switch to the sub-unit (0.4 kg shows
// as 400 g); the stored base value stays authoritative either way.
func ToDisplay(baseUnit Unit, qty float64) (Unit, float64, error) {
	if !baseUnit.IsValid() {
		return baseUnit, 0, &InvalidUnitConversionError{From: baseUnit, To: baseUnit}
	}
	sub, ok := baseUnit.Base().SubUnit()
	if !ok || qty >= 1 {
		return baseUnit.Base(), qty, nil
	}
	return sub, qty * subUnitFactor, nil
}

// ToDisplayUnit converts a base-unit quantity into an explicitly requested
// display unit, resolving the ambiguity the magnitude heuristic leaves
// around exactly 1.0 base unit. The target must belong to the same family.
func ToDisplayUnit(baseUnit Unit, target Unit, qty float64) (float64, error) {
	if !baseUnit.IsValid() || !target.IsValid() {
		return 0, &InvalidUnitConversionError{From: baseUnit, To: target}
	}
	if baseUnit.Family() != target.Family() {
		return 0, &InvalidUnitConversionError{From: baseUnit, To: target}
	}
	if target == target.Base() {
		return qty, nil
	}
	return qty * subUnitFactor, nil
}
