/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package spyfall

import (
	"errors"
	"fmt"
)

// Location is one catalog entry: a place and the occupations found there.
type Location struct {
	Name        string
	Occupations []string
}

// Catalog maps location names to their occupations. It is immutable once built.
type Catalog struct {
	names       []string
	occupations map[string][]string
}

// NewCatalog validates entries and builds a catalog preserving their order.
func NewCatalog(entries []Location) (*Catalog, error) {
	if len(entries) == 0 {
		return nil, errors.New("catalog must contain at least one location")
	}

	c := &Catalog{
		names:       make([]string, 0, len(entries)),
		occupations: make(map[string][]string, len(entries)),
	}

	for _, e := range entries {
		if e.Name == "" {
			return nil, errors.New("catalog location name must not be empty")
		}
		if _, exists := c.occupations[e.Name]; exists {
			return nil, fmt.Errorf("duplicate catalog location %q", e.Name)
		}
		if len(e.Occupations) == 0 {
			return nil, fmt.Errorf("catalog location %q has no occupations", e.Name)
		}

		c.names = append(c.names, e.Name)
		c.occupations[e.Name] = append([]string(nil), e.Occupations...)
	}

	return c, nil
}

// MustCatalog is NewCatalog for static tables; it panics on invalid input.
func MustCatalog(entries []Location) *Catalog {
	c, err := NewCatalog(entries)
	if err != nil {
		panic(err)
	}
	return c
}

// Locations returns the location names in catalog order.
func (c *Catalog) Locations() []string {
	return append([]string(nil), c.names...)
}

// Occupations returns a copy of the occupations for location.
func (c *Catalog) Occupations(location string) ([]string, error) {
	occ, ok := c.occupations[location]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLocation, location)
	}
	return append([]string(nil), occ...), nil
}

// Len reports the number of locations.
func (c *Catalog) Len() int {
	return len(c.names)
}

var defaultLocations = []Location{
	{"Hospital", []string{"Doctor", "Nurse", "Surgeon", "Janitor", "Patient", "Security Guard", "Pharmacist"}},
	{"Airport", []string{"Pilot", "Flight Attendant", "TSA Officer", "Traveler", "Customs Agent", "Mechanic", "Lost Luggage Clerk"}},
	{"High School", []string{"Teacher", "Student", "Principal", "Janitor", "Lunch Lady", "Coach", "Substitute Teacher"}},
	{"Fast Food Restaurant", []string{"Cook", "Cashier", "Drive-Thru Worker", "Manager", "Customer", "Delivery Driver", "Health Inspector"}},
	{"Train Station", []string{"Conductor", "Ticket Seller", "Passenger", "Janitor", "Coffee Stand Worker", "Security Guard", "Pickpocket"}},
	{"Stadium", []string{"Athlete", "Coach", "Referee", "Announcer", "Fan", "Vendor", "Drunk Guy"}},
	{"Beach", []string{"Lifeguard", "Tourist", "Surfer", "Beach Vendor", "Photographer", "Ice Cream Cart Worker", "Sandcastle Judge"}},
	{"Grocery Store", []string{"Cashier", "Stock Clerk", "Manager", "Butcher", "Baker", "Customer", "Coupon Hoarder"}},
	{"Hotel", []string{"Receptionist", "Housekeeper", "Bellhop", "Manager", "Guest", "Chef", "Suspicious Businessman"}},
	{"Movie Theater", []string{"Ticket Taker", "Concessions Worker", "Manager", "Janitor", "Projectionist", "Customer", "Teen Couple"}},
	{"Police Station", []string{"Detective", "Patrol Officer", "Dispatcher", "Jail Guard", "Suspect", "Lawyer", "Snitch"}},
	{"Casino", []string{"Dealer", "Bartender", "Security Guard", "Gambler", "Manager", "Showgirl", "Loan Shark"}},
	{"Nightclub", []string{"DJ", "Bartender", "Bouncer", "Dancer", "Owner", "Customer", "Undercover Cop"}},
	{"Cruise Ship", []string{"Captain", "Bartender", "Tourist", "Entertainer", "Chef", "Housekeeper", "Stowaway"}},
	{"Courtroom", []string{"Judge", "Lawyer", "Bailiff", "Defendant", "Juror", "Reporter", "Courtroom Sketch Artist"}},
	{"Office", []string{"Boss", "Intern", "Receptionist", "IT Guy", "Janitor", "Overworked Employee", "HR Manager"}},
}

var defaultCatalog = MustCatalog(defaultLocations)

// DefaultCatalog returns the built-in 16 location catalog.
func DefaultCatalog() *Catalog {
	return defaultCatalog
}
