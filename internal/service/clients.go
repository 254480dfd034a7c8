package service

import (
	"context"

	"github.com/pocket-crm/analytics-api/internal/analytics"
	"github.com/pocket-crm/analytics-api/internal/domain"
)

// Clients builds the client segmentation view.
// Segments, basket and lifetime value cover the whole history; new and active clients the window.
func (s *ReportService) Clients(ctx context.Context, period analytics.Period) (*domain.ClientsReport, error) {
	res, err := s.resolve(period)
	if err != nil {
		return nil, err
	}

	var (
		contacts, newContacts []domain.Contact
		companies             []domain.Company
		wonAll, wonCurrent    []domain.Lead
	)
	g := s.gather(ctx, ReportClients)
	load(g, allContacts(), &contacts)
	load(g, contactsCreatedIn(res.Current), &newContacts)
	load(g, allCompanies(), &companies)
	load(g, allWonLeads(), &wonAll)
	load(g, wonLeadsClosedIn(res.Current), &wonCurrent)
	if err := g.wait(); err != nil {
		return nil, err
	}

	cities := analytics.SegmentContacts(contacts, companies, func(c domain.Company) string { return c.City }, s.topN)
	byCity := make([]domain.CitySegment, len(cities))
	for i, r := range cities {
		byCity[i] = domain.CitySegment{City: r.Key, Count: r.Count}
	}

	industries := analytics.SegmentContacts(contacts, companies, func(c domain.Company) string { return c.Industry }, s.topN)
	byIndustry := make([]domain.IndustrySegment, len(industries))
	for i, r := range industries {
		byIndustry[i] = domain.IndustrySegment{Industry: r.Key, Count: r.Count}
	}

	values := analytics.LifetimeValues(wonAll, contacts, s.topN)
	top := make([]domain.TopClient, len(values))
	for i, v := range values {
		top[i] = domain.TopClient{ContactID: v.ContactID, Name: v.Name, LTV: money(v.LTV), Deals: v.Deals}
	}

	return &domain.ClientsReport{
		ReportMeta:    meta(res),
		TotalClients:  analytics.CountTagged(contacts, domain.ContactTagClient),
		NewClients:    analytics.CountTagged(newContacts, domain.ContactTagClient),
		ActiveClients: analytics.DistinctContacts(wonCurrent),
		ByCity:        byCity,
		ByIndustry:    byIndustry,
		AvgBasket:     analytics.AverageBasket(wonAll),
		TopClients:    top,
	}, nil
}
