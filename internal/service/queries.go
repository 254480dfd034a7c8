package service

import (
	"github.com/pocket-crm/analytics-api/internal/analytics"
	"github.com/pocket-crm/analytics-api/internal/domain"
	"github.com/pocket-crm/analytics-api/internal/repository"
)

// Record queries shared by the report assemblers.
// Windowed queries bound one date field to [start, end).

func window(field string, w analytics.Window) *repository.Window {
	return &repository.Window{Field: field, Start: w.Start, End: w.End}
}

func wonLeadsClosedIn(w analytics.Window) repository.Query {
	return repository.Query{
		Entity: repository.EntityLeads,
		Filter: repository.Eq("status", domain.LeadStatusGagne),
		Window: window("closed_at", w),
	}
}

func leadsCreatedIn(w analytics.Window) repository.Query {
	return repository.Query{
		Entity: repository.EntityLeads,
		Window: window("created_at", w),
	}
}

func openLeads() repository.Query {
	return repository.Query{
		Entity: repository.EntityLeads,
		Filter: repository.In("status", domain.OpenLeadStatuses...),
	}
}

func allWonLeads() repository.Query {
	return repository.Query{
		Entity: repository.EntityLeads,
		Filter: repository.Eq("status", domain.LeadStatusGagne),
	}
}

func allUsers() repository.Query {
	return repository.Query{Entity: repository.EntityUsers}
}

func salesUsers() repository.Query {
	return repository.Query{
		Entity: repository.EntityUsers,
		Filter: repository.In("role", domain.UserRoleAdmin, domain.UserRoleCommercial),
	}
}

func pendingTasks() repository.Query {
	return repository.Query{
		Entity: repository.EntityTasks,
		Filter: repository.And(
			repository.IsSet("due_date"),
			repository.NotIn("status", domain.TaskStatusTerminee, domain.TaskStatusAnnulee),
		),
	}
}

func tasksCreatedIn(w analytics.Window) repository.Query {
	return repository.Query{
		Entity: repository.EntityTasks,
		Window: window("created_at", w),
	}
}

func recentActivities(limit int) repository.Query {
	return repository.Query{
		Entity:  repository.EntityActivities,
		Sort:    "-created_at",
		Page:    1,
		PerPage: limit,
	}
}

func allContacts() repository.Query {
	return repository.Query{Entity: repository.EntityContacts}
}

func contactsCreatedIn(w analytics.Window) repository.Query {
	return repository.Query{
		Entity: repository.EntityContacts,
		Filter: repository.Contains("tags", string(domain.ContactTagClient)),
		Window: window("created_at", w),
	}
}

func allCompanies() repository.Query {
	return repository.Query{Entity: repository.EntityCompanies}
}

func invoicesIssuedIn(w analytics.Window) repository.Query {
	return repository.Query{
		Entity: repository.EntityInvoices,
		Window: window("issued_at", w),
	}
}

func invoicesPaidIn(w analytics.Window) repository.Query {
	return repository.Query{
		Entity: repository.EntityInvoices,
		Filter: repository.Eq("status", domain.InvoiceStatusPayee),
		Window: window("paid_at", w),
	}
}

func emailLogsSentIn(w analytics.Window) repository.Query {
	return repository.Query{
		Entity: repository.EntityEmailLogs,
		Window: window("sent_at", w),
	}
}

func allEmailLogs() repository.Query {
	return repository.Query{Entity: repository.EntityEmailLogs}
}

func campaignEmailLogs() repository.Query {
	return repository.Query{
		Entity: repository.EntityEmailLogs,
		Filter: repository.And(repository.IsSet("campaign_id"), repository.Neq("campaign_id", "")),
	}
}

func emailLogsOfCampaign(id string) repository.Query {
	return repository.Query{
		Entity: repository.EntityEmailLogs,
		Filter: repository.Eq("campaign_id", id),
	}
}

func expensesIn(w analytics.Window) repository.Query {
	return repository.Query{
		Entity: repository.EntityMarketingExpenses,
		Window: window("date", w),
	}
}

func allCampaigns() repository.Query {
	return repository.Query{Entity: repository.EntityCampaigns}
}

func campaignByID(id string) repository.Query {
	return repository.Query{
		Entity:  repository.EntityCampaigns,
		Filter:  repository.Eq("id", id),
		Page:    1,
		PerPage: 1,
	}
}
