// Command seed fills a development record store with a small, realistic CRM dataset
// and prints a session token for each seeded user.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pocket-crm/analytics-api/internal/auth"
	"github.com/pocket-crm/analytics-api/internal/config"
	"github.com/pocket-crm/analytics-api/internal/database"
	"github.com/pocket-crm/analytics-api/internal/domain"
	"github.com/pocket-crm/analytics-api/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Seed error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	migrate := flag.Bool("migrate", false, "create the schema with AutoMigrate before seeding")
	tokenTTL := flag.Duration("token-ttl", 24*time.Hour, "lifetime of the printed session tokens")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.App.Environment == "production" || cfg.App.Environment == "staging" {
		return fmt.Errorf("refusing to seed the %s environment", cfg.App.Environment)
	}

	log, err := logger.NewLogger(&cfg.Logging, &cfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	db, err := database.NewDatabase(ctx, &cfg.Database, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if *migrate {
		if err := database.AutoMigrate(db); err != nil {
			return fmt.Errorf("failed to migrate: %w", err)
		}
	}

	data := buildDataset(time.Now().UTC())
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, batch := range data.batches() {
			if err := tx.Create(batch).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to insert records: %w", err)
	}
	log.Info("seeded record store",
		zap.Int("users", len(data.users)),
		zap.Int("leads", len(data.leads)),
		zap.Int("invoices", len(data.invoices)),
		zap.Int("email_logs", len(data.logs)),
	)

	if cfg.Auth.JWTSecret == "" {
		log.Warn("auth.jwtSecret is empty, skipping session tokens")
		return nil
	}
	issuer := auth.NewJWTValidator(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
	for _, u := range data.users {
		token, err := issuer.IssueToken(u, *tokenTTL)
		if err != nil {
			return fmt.Errorf("failed to issue token for %s: %w", u.Email, err)
		}
		fmt.Printf("%-11s %s\n", u.Role, token)
	}
	return nil
}

type dataset struct {
	users     []domain.User
	companies []domain.Company
	contacts  []domain.Contact
	campaigns []domain.Campaign
	leads     []domain.Lead
	invoices  []domain.Invoice
	logs      []domain.EmailLog
	expenses  []domain.MarketingExpense
	tasks     []domain.Task
	events    []domain.Activity
}

// batches returns the slices in insertion order
func (d *dataset) batches() []interface{} {
	return []interface{}{
		&d.users, &d.companies, &d.contacts, &d.campaigns, &d.leads,
		&d.invoices, &d.logs, &d.expenses, &d.tasks, &d.events,
	}
}

// newID returns a 32 character record id
func newID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

func buildDataset(now time.Time) *dataset {
	d := &dataset{}
	daysAgo := func(n int) time.Time { return now.AddDate(0, 0, -n) }

	admin := domain.User{ID: newID(), Name: "Claire Martin", Email: "claire.martin@example.com", Role: domain.UserRoleAdmin}
	sales := domain.User{ID: newID(), Name: "Hugo Bernard", Email: "hugo.bernard@example.com", Role: domain.UserRoleCommercial}
	viewer := domain.User{ID: newID(), Name: "Lina Petit", Email: "lina.petit@example.com", Role: domain.UserRoleStandard}
	d.users = []domain.User{admin, sales, viewer}

	acme := domain.Company{ID: newID(), Name: "Acme Industrie", Industry: "Industrie", City: "Lyon"}
	nova := domain.Company{ID: newID(), Name: "Nova Conseil", Industry: "Conseil", City: "Paris"}
	d.companies = []domain.Company{acme, nova}

	alice := domain.Contact{ID: newID(), FirstName: "Alice", LastName: "Durand", Email: "alice@acme.example.com", CompanyID: acme.ID, OwnerID: sales.ID, Tags: "client", CreatedAt: daysAgo(90)}
	bruno := domain.Contact{ID: newID(), FirstName: "Bruno", LastName: "Leroy", Email: "bruno@nova.example.com", CompanyID: nova.ID, OwnerID: admin.ID, Tags: "prospect", CreatedAt: daysAgo(12)}
	d.contacts = []domain.Contact{alice, bruno}

	newsletter := domain.Campaign{ID: newID(), Name: "Newsletter printemps", Type: domain.CampaignTypeEmail, Status: domain.CampaignStatusEnvoye, Budget: 500}
	salon := domain.Campaign{ID: newID(), Name: "Salon Lyon", Type: domain.CampaignTypeEvent, Status: domain.CampaignStatusTermine, Budget: 3000}
	d.campaigns = []domain.Campaign{newsletter, salon}

	won := domain.Lead{ID: newID(), Title: "Refonte ERP", Value: 18000, Status: domain.LeadStatusNegociation, Source: domain.ChannelSalon,
		ContactID: alice.ID, CompanyID: acme.ID, OwnerID: sales.ID, CampaignID: salon.ID, CreatedAt: daysAgo(40)}
	won.SetStatus(domain.LeadStatusGagne, daysAgo(8))
	lost := domain.Lead{ID: newID(), Title: "Audit sécurité", Value: 6000, Status: domain.LeadStatusProposition, Source: domain.ChannelEmail,
		ContactID: bruno.ID, CompanyID: nova.ID, OwnerID: admin.ID, CampaignID: newsletter.ID, CreatedAt: daysAgo(20)}
	lost.SetStatus(domain.LeadStatusPerdu, daysAgo(3))
	open := domain.Lead{ID: newID(), Title: "Formation équipes", Value: 4500, Status: domain.LeadStatusQualifie, Source: domain.ChannelEmail,
		ContactID: bruno.ID, CompanyID: nova.ID, OwnerID: sales.ID, CampaignID: newsletter.ID, CreatedAt: daysAgo(5)}
	d.leads = []domain.Lead{won, lost, open}

	deposit := domain.Invoice{ID: newID(), Number: "F-0001", LeadID: won.ID, ContactID: alice.ID, CompanyID: acme.ID, OwnerID: sales.ID,
		Status: domain.InvoiceStatusEmise, Amount: 9000, TaxRate: 20, IssuedAt: daysAgo(7)}
	deposit.ComputeTotal()
	_ = deposit.MarkPaid(daysAgo(2))
	balance := domain.Invoice{ID: newID(), Number: "F-0002", LeadID: won.ID, ContactID: alice.ID, CompanyID: acme.ID, OwnerID: sales.ID,
		Status: domain.InvoiceStatusEmise, Amount: 9000, TaxRate: 20, IssuedAt: daysAgo(6)}
	balance.ComputeTotal()
	due := daysAgo(1)
	balance.DueAt = &due
	balance.RefreshOverdue(now)
	d.invoices = []domain.Invoice{deposit, balance}

	sentAt := daysAgo(10)
	openedAt := daysAgo(9)
	d.logs = []domain.EmailLog{
		{ID: newID(), CampaignID: newsletter.ID, ContactID: alice.ID, Recipient: alice.Email, Status: domain.EmailStatusClique, OpenCount: 2, ClickCount: 1, SentAt: &sentAt, OpenedAt: &openedAt, ClickedAt: &openedAt},
		{ID: newID(), CampaignID: newsletter.ID, ContactID: bruno.ID, Recipient: bruno.Email, Status: domain.EmailStatusOuvert, OpenCount: 1, SentAt: &sentAt, OpenedAt: &openedAt},
		{ID: newID(), CampaignID: newsletter.ID, Recipient: "bounce@example.com", Status: domain.EmailStatusEchoue},
	}

	d.expenses = []domain.MarketingExpense{
		{ID: newID(), Date: daysAgo(15), Amount: 400, Category: domain.ChannelEmail, CampaignID: newsletter.ID, Description: "Routage newsletter"},
		{ID: newID(), Date: daysAgo(45), Amount: 2800, Category: domain.ChannelSalon, CampaignID: salon.ID, Description: "Stand salon"},
	}
	for i := range d.expenses {
		campaign := &newsletter
		if d.expenses[i].CampaignID == salon.ID {
			campaign = &salon
		}
		if err := d.expenses[i].CheckCampaign(campaign); err != nil {
			// keep the seed consistent with the campaign type
			d.expenses[i].CampaignID = ""
		}
	}

	tomorrow := now.AddDate(0, 0, 1)
	yesterday := daysAgo(1)
	d.tasks = []domain.Task{
		{ID: newID(), Title: "Rendez-vous Nova", Type: domain.TaskTypeReunion, Status: domain.TaskStatusAFaire, AssigneeID: sales.ID, LeadID: open.ID, DueDate: &now, CreatedAt: daysAgo(4)},
		{ID: newID(), Title: "Relance Acme", Type: domain.TaskTypeAppel, Status: domain.TaskStatusEnCours, AssigneeID: sales.ID, LeadID: won.ID, DueDate: &yesterday, CreatedAt: daysAgo(6)},
		{ID: newID(), Title: "Préparer devis", Type: domain.TaskTypeEmail, Status: domain.TaskStatusAFaire, AssigneeID: admin.ID, DueDate: &tomorrow, CreatedAt: daysAgo(2)},
	}

	d.events = []domain.Activity{
		{ID: newID(), Type: "lead_won", Description: "Refonte ERP gagnée", UserID: sales.ID, LeadID: won.ID, CreatedAt: daysAgo(8)},
		{ID: newID(), Type: "invoice_paid", Description: "Facture F-0001 réglée", UserID: admin.ID, CreatedAt: daysAgo(2)},
	}
	return d
}
