package domain

import (
	"strings"
	"time"
)

// LeadStatus represents a stage of the sales pipeline
type LeadStatus string

const (
	LeadStatusNouveau     LeadStatus = "nouveau"
	LeadStatusContacte    LeadStatus = "contacte"
	LeadStatusQualifie    LeadStatus = "qualifie"
	LeadStatusProposition LeadStatus = "proposition"
	LeadStatusNegociation LeadStatus = "negociation"
	LeadStatusGagne       LeadStatus = "gagne"
	LeadStatusPerdu       LeadStatus = "perdu"
)

// LeadStatuses lists every lead status in canonical pipeline order
var LeadStatuses = []LeadStatus{
	LeadStatusNouveau,
	LeadStatusContacte,
	LeadStatusQualifie,
	LeadStatusProposition,
	LeadStatusNegociation,
	LeadStatusGagne,
	LeadStatusPerdu,
}

// OpenLeadStatuses lists the stages of leads that are still in the pipeline
var OpenLeadStatuses = []LeadStatus{
	LeadStatusNouveau,
	LeadStatusContacte,
	LeadStatusQualifie,
	LeadStatusProposition,
	LeadStatusNegociation,
}

// IsClosed reports whether the status ends the pipeline
func (s LeadStatus) IsClosed() bool {
	return s == LeadStatusGagne || s == LeadStatusPerdu
}

// IsOpen reports whether the status is one of the open pipeline stages
func (s LeadStatus) IsOpen() bool {
	for _, open := range OpenLeadStatuses {
		if s == open {
			return true
		}
	}
	return false
}

// LeadPriority represents the urgency of a lead
type LeadPriority string

const (
	LeadPriorityBasse   LeadPriority = "basse"
	LeadPriorityMoyenne LeadPriority = "moyenne"
	LeadPriorityHaute   LeadPriority = "haute"
	LeadPriorityUrgente LeadPriority = "urgente"
)

// Channel is the acquisition channel key shared by lead sources and expense categories
type Channel string

const (
	ChannelSiteWeb        Channel = "site_web"
	ChannelEmail          Channel = "email"
	ChannelTelephone      Channel = "telephone"
	ChannelSalon          Channel = "salon"
	ChannelRecommandation Channel = "recommandation"
	ChannelAds            Channel = "ads"
	ChannelSocial         Channel = "social"
	ChannelEvent          Channel = "event"
	ChannelSEO            Channel = "seo"
	ChannelAutre          Channel = "autre"
)

// InvoiceStatus represents the billing state of an invoice
type InvoiceStatus string

const (
	InvoiceStatusBrouillon InvoiceStatus = "brouillon"
	InvoiceStatusEmise     InvoiceStatus = "emise"
	InvoiceStatusPayee     InvoiceStatus = "payee"
	InvoiceStatusEnRetard  InvoiceStatus = "en_retard"
	InvoiceStatusAnnulee   InvoiceStatus = "annulee"
)

// InvoiceStatuses lists every invoice status in canonical order
var InvoiceStatuses = []InvoiceStatus{
	InvoiceStatusBrouillon,
	InvoiceStatusEmise,
	InvoiceStatusPayee,
	InvoiceStatusEnRetard,
	InvoiceStatusAnnulee,
}

// EmailStatus represents the delivery state of a single campaign email
type EmailStatus string

const (
	EmailStatusEnAttente EmailStatus = "en_attente"
	EmailStatusEnvoye    EmailStatus = "envoye"
	EmailStatusOuvert    EmailStatus = "ouvert"
	EmailStatusClique    EmailStatus = "clique"
	EmailStatusEchoue    EmailStatus = "echoue"
)

// IsSent reports whether the email left the outbox
func (s EmailStatus) IsSent() bool {
	return s == EmailStatusEnvoye || s == EmailStatusOuvert || s == EmailStatusClique
}

// CampaignType represents the kind of marketing campaign
type CampaignType string

const (
	CampaignTypeEmail  CampaignType = "email"
	CampaignTypeAds    CampaignType = "ads"
	CampaignTypeSocial CampaignType = "social"
	CampaignTypeEvent  CampaignType = "event"
	CampaignTypeSEO    CampaignType = "seo"
	CampaignTypeAutre  CampaignType = "autre"
)

// CampaignStatus represents the lifecycle state of a campaign
type CampaignStatus string

const (
	CampaignStatusBrouillon CampaignStatus = "brouillon"
	CampaignStatusEnCours   CampaignStatus = "en_cours"
	CampaignStatusEnvoye    CampaignStatus = "envoye"
	CampaignStatusTermine   CampaignStatus = "termine"
)

// TaskType represents the kind of follow-up action
type TaskType string

const (
	TaskTypeAppel   TaskType = "appel"
	TaskTypeEmail   TaskType = "email"
	TaskTypeReunion TaskType = "reunion"
	TaskTypeSuivi   TaskType = "suivi"
	TaskTypeAutre   TaskType = "autre"
)

// TaskStatus represents the progress of a task
type TaskStatus string

const (
	TaskStatusAFaire   TaskStatus = "a_faire"
	TaskStatusEnCours  TaskStatus = "en_cours"
	TaskStatusTerminee TaskStatus = "terminee"
	TaskStatusAnnulee  TaskStatus = "annulee"
)

// IsDone reports whether the task no longer needs attention
func (s TaskStatus) IsDone() bool {
	return s == TaskStatusTerminee || s == TaskStatusAnnulee
}

// UserRole represents the capability level of a CRM user
type UserRole string

const (
	UserRoleAdmin      UserRole = "admin"
	UserRoleCommercial UserRole = "commercial"
	UserRoleStandard   UserRole = "standard"
)

// IsValid reports whether the role is one of the known roles
func (r UserRole) IsValid() bool {
	switch r {
	case UserRoleAdmin, UserRoleCommercial, UserRoleStandard:
		return true
	}
	return false
}

// ContactTag classifies a contact
type ContactTag string

const (
	ContactTagProspect    ContactTag = "prospect"
	ContactTagClient      ContactTag = "client"
	ContactTagPartenaire  ContactTag = "partenaire"
	ContactTagFournisseur ContactTag = "fournisseur"
)

// User represents a CRM user (owner of leads, assignee of tasks)
type User struct {
	ID        string    `gorm:"type:varchar(32);primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(200);not null" json:"name"`
	Email     string    `gorm:"type:varchar(255);uniqueIndex" json:"email"`
	Role      UserRole  `gorm:"type:varchar(20);not null;default:'standard';index" json:"role"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (User) TableName() string { return "users" }

// Company represents an organization contacts belong to
type Company struct {
	ID        string    `gorm:"type:varchar(32);primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(200);not null" json:"name"`
	Industry  string    `gorm:"type:varchar(100);index" json:"industry"`
	City      string    `gorm:"type:varchar(100);index" json:"city"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Company) TableName() string { return "companies" }

// Contact represents an individual person
type Contact struct {
	ID        string    `gorm:"type:varchar(32);primaryKey" json:"id"`
	FirstName string    `gorm:"type:varchar(100);not null;column:first_name" json:"first_name"`
	LastName  string    `gorm:"type:varchar(100);not null;column:last_name" json:"last_name"`
	Email     string    `gorm:"type:varchar(255)" json:"email"`
	CompanyID string    `gorm:"type:varchar(32);column:company_id;index" json:"company_id"`
	OwnerID   string    `gorm:"type:varchar(32);column:owner_id;index" json:"owner_id"`
	Tags      string    `gorm:"type:varchar(255)" json:"tags"`
	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Contact) TableName() string { return "contacts" }

// FullName returns the display name of the contact
func (c Contact) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// HasTag reports whether the comma-separated tag list contains tag
func (c Contact) HasTag(tag ContactTag) bool {
	for _, t := range strings.Split(c.Tags, ",") {
		if ContactTag(strings.TrimSpace(t)) == tag {
			return true
		}
	}
	return false
}

// Lead represents a sales opportunity
type Lead struct {
	ID            string       `gorm:"type:varchar(32);primaryKey" json:"id"`
	Title         string       `gorm:"type:varchar(255);not null" json:"title"`
	Value         float64      `gorm:"type:decimal(15,2);not null;default:0" json:"value"`
	Status        LeadStatus   `gorm:"type:varchar(20);not null;default:'nouveau';index" json:"status"`
	Priority      LeadPriority `gorm:"type:varchar(20);default:'moyenne'" json:"priority"`
	Source        Channel      `gorm:"type:varchar(50);index" json:"source"`
	ContactID     string       `gorm:"type:varchar(32);column:contact_id;index" json:"contact_id"`
	CompanyID     string       `gorm:"type:varchar(32);column:company_id;index" json:"company_id"`
	OwnerID       string       `gorm:"type:varchar(32);column:owner_id;index" json:"owner_id"`
	CampaignID    string       `gorm:"type:varchar(32);column:campaign_id;index" json:"campaign_id"`
	ExpectedClose *time.Time   `gorm:"column:expected_close" json:"expected_close,omitempty"`
	ClosedAt      *time.Time   `gorm:"column:closed_at;index" json:"closed_at,omitempty"`
	CreatedAt     time.Time    `gorm:"not null;index" json:"created_at"`
	UpdatedAt     time.Time    `gorm:"not null" json:"updated_at"`
}

func (Lead) TableName() string { return "leads" }

// Invoice represents a bill sent to a client
type Invoice struct {
	ID        string        `gorm:"type:varchar(32);primaryKey" json:"id"`
	Number    string        `gorm:"type:varchar(50);uniqueIndex" json:"number"`
	LeadID    string        `gorm:"type:varchar(32);column:lead_id;index" json:"lead_id"`
	ContactID string        `gorm:"type:varchar(32);column:contact_id;index" json:"contact_id"`
	CompanyID string        `gorm:"type:varchar(32);column:company_id;index" json:"company_id"`
	OwnerID   string        `gorm:"type:varchar(32);column:owner_id;index" json:"owner_id"`
	Status    InvoiceStatus `gorm:"type:varchar(20);not null;default:'brouillon';index" json:"status"`
	Amount    float64       `gorm:"type:decimal(15,2);not null;default:0" json:"amount"`
	TaxRate   float64       `gorm:"type:decimal(5,2);not null;default:0;column:tax_rate" json:"tax_rate"`
	Total     float64       `gorm:"type:decimal(15,2);not null;default:0" json:"total"`
	IssuedAt  time.Time     `gorm:"column:issued_at;not null;index" json:"issued_at"`
	DueAt     *time.Time    `gorm:"column:due_at" json:"due_at,omitempty"`
	PaidAt    *time.Time    `gorm:"column:paid_at;index" json:"paid_at,omitempty"`
	CreatedAt time.Time     `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time     `gorm:"not null" json:"updated_at"`
}

func (Invoice) TableName() string { return "invoices" }

// Campaign represents a marketing campaign
type Campaign struct {
	ID        string         `gorm:"type:varchar(32);primaryKey" json:"id"`
	Name      string         `gorm:"type:varchar(200);not null" json:"name"`
	Type      CampaignType   `gorm:"type:varchar(20);not null;default:'email'" json:"type"`
	Status    CampaignStatus `gorm:"type:varchar(20);not null;default:'brouillon'" json:"status"`
	Budget    float64        `gorm:"type:decimal(15,2);default:0" json:"budget"`
	Total     int            `gorm:"not null;default:0" json:"total"`
	Sent      int            `gorm:"not null;default:0" json:"sent"`
	Failed    int            `gorm:"not null;default:0" json:"failed"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
}

func (Campaign) TableName() string { return "campaigns" }

// EmailLog records the delivery and engagement of a single campaign email
type EmailLog struct {
	ID         string      `gorm:"type:varchar(32);primaryKey" json:"id"`
	CampaignID string      `gorm:"type:varchar(32);column:campaign_id;index" json:"campaign_id"`
	ContactID  string      `gorm:"type:varchar(32);column:contact_id" json:"contact_id"`
	Recipient  string      `gorm:"type:varchar(255)" json:"recipient"`
	Status     EmailStatus `gorm:"type:varchar(20);not null;default:'en_attente';index" json:"status"`
	OpenCount  int         `gorm:"column:open_count;not null;default:0" json:"open_count"`
	ClickCount int         `gorm:"column:click_count;not null;default:0" json:"click_count"`
	SentAt     *time.Time  `gorm:"column:sent_at;index" json:"sent_at,omitempty"`
	OpenedAt   *time.Time  `gorm:"column:opened_at" json:"opened_at,omitempty"`
	ClickedAt  *time.Time  `gorm:"column:clicked_at" json:"clicked_at,omitempty"`
	CreatedAt  time.Time   `gorm:"not null;index" json:"created_at"`
	UpdatedAt  time.Time   `gorm:"not null" json:"updated_at"`
}

func (EmailLog) TableName() string { return "email_logs" }

// MarketingExpense records money spent on an acquisition channel
type MarketingExpense struct {
	ID          string    `gorm:"type:varchar(32);primaryKey" json:"id"`
	Date        time.Time `gorm:"not null;index" json:"date"`
	Amount      float64   `gorm:"type:decimal(15,2);not null;default:0" json:"amount"`
	Category    Channel   `gorm:"type:varchar(50);index" json:"category"`
	CampaignID  string    `gorm:"type:varchar(32);column:campaign_id;index" json:"campaign_id"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}

func (MarketingExpense) TableName() string { return "marketing_expenses" }

// Task represents a follow-up action assigned to a user
type Task struct {
	ID          string     `gorm:"type:varchar(32);primaryKey" json:"id"`
	Title       string     `gorm:"type:varchar(255);not null" json:"title"`
	Type        TaskType   `gorm:"type:varchar(20);not null;default:'autre';index" json:"type"`
	Status      TaskStatus `gorm:"type:varchar(20);not null;default:'a_faire';index" json:"status"`
	AssigneeID  string     `gorm:"type:varchar(32);column:assignee_id;index" json:"assignee_id"`
	LeadID      string     `gorm:"type:varchar(32);column:lead_id" json:"lead_id"`
	DueDate     *time.Time `gorm:"column:due_date;index" json:"due_date,omitempty"`
	CompletedAt *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`
	CreatedAt   time.Time  `gorm:"not null;index" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null" json:"updated_at"`
}

func (Task) TableName() string { return "tasks" }

// Activity is an entry of the CRM activity feed
type Activity struct {
	ID          string    `gorm:"type:varchar(32);primaryKey" json:"id"`
	Type        string    `gorm:"type:varchar(50);not null" json:"type"`
	Description string    `gorm:"type:text" json:"description"`
	UserID      string    `gorm:"type:varchar(32);column:user_id;index" json:"user_id"`
	LeadID      string    `gorm:"type:varchar(32);column:lead_id" json:"lead_id"`
	ContactID   string    `gorm:"type:varchar(32);column:contact_id" json:"contact_id"`
	CreatedAt   time.Time `gorm:"not null;index" json:"created_at"`
}

func (Activity) TableName() string { return "activities" }

// AllModels returns every record type read by the analytics engine
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&Company{},
		&Contact{},
		&Lead{},
		&Invoice{},
		&Campaign{},
		&EmailLog{},
		&MarketingExpense{},
		&Task{},
		&Activity{},
	}
}
