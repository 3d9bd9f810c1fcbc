package domain

// PractitionerProfile is the part of the practitioner profile the engine needs
type PractitionerProfile struct {
	ID          int64
	Price       *float64
	Specialties []string
	Timezone    string
}

// MissingForBooking lists what keeps the profile from accepting appointments.
// hasAvailability comes from the local template store.
func (p *PractitionerProfile) MissingForBooking(hasAvailability bool) []string {
	var missing []string
	if p.Price == nil || *p.Price < MinPrice || *p.Price > MaxPrice {
		missing = append(missing, "price")
	}
	if len(p.Specialties) == 0 {
		missing = append(missing, "specialties")
	}
	if !hasAvailability {
		missing = append(missing, "availability")
	}
	return missing
}
