package domain

import "time"

// ReportWindow is the [start, end) interval a report covers
type ReportWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// ReportMeta identifies the period a report was computed for
type ReportMeta struct {
	Period string       `json:"period"`
	Window ReportWindow `json:"window"`
}

// Comparison is a current vs previous period figure
type Comparison struct {
	Current      float64 `json:"current"`
	Previous     float64 `json:"previous"`
	EvolutionPct Figure  `json:"evolution_pct"`
}

// StageAmount is the count and value of leads in one pipeline stage
type StageAmount struct {
	Stage  string  `json:"stage"`
	Count  int     `json:"count"`
	Amount float64 `json:"amount"`
}

// StageCount is the number of leads in one pipeline stage
type StageCount struct {
	Stage string `json:"stage"`
	Count int    `json:"count"`
}

// MonthRevenue is the won revenue of one trend bucket
type MonthRevenue struct {
	Month   string  `json:"month"`
	Revenue float64 `json:"revenue"`
}

// MonthAmount is the paid amount of one trend bucket
type MonthAmount struct {
	Month  string  `json:"month"`
	Amount float64 `json:"amount"`
}

// MonthCount is the number of records of one trend bucket
type MonthCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

// ActivityItem is an entry of the dashboard activity feed
type ActivityItem struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Created     time.Time `json:"created"`
	UserID      string    `json:"user_id"`
	UserName    string    `json:"user_name"`
}

// DashboardReport is the landing page summary
type DashboardReport struct {
	ReportMeta
	Revenue             Comparison     `json:"revenue"`
	NewProspects        Comparison     `json:"new_prospects"`
	MeetingsToday       int            `json:"meetings_today"`
	OverdueTasks        int            `json:"overdue_tasks"`
	ActivePipelineValue float64        `json:"active_pipeline_value"`
	WonValue            float64        `json:"won_value"`
	PipelineByStage     []StageAmount  `json:"pipeline_by_stage"`
	RecentActivities    []ActivityItem `json:"recent_activities"`
	RevenueTrend        []MonthRevenue `json:"revenue_trend"`
}

// SalesSummary condenses the leads created in the window
type SalesSummary struct {
	TotalLeads          int     `json:"total_leads"`
	WonCount            int     `json:"won_count"`
	LostCount           int     `json:"lost_count"`
	WonValue            float64 `json:"won_value"`
	ActivePipelineValue float64 `json:"active_pipeline_value"`
}

// SalespersonRevenue is the won revenue of one lead owner
type SalespersonRevenue struct {
	UserID  string  `json:"user_id"`
	Name    string  `json:"name"`
	Revenue float64 `json:"revenue"`
	Deals   int     `json:"deals"`
}

// SalesReport is the sales statistics view
type SalesReport struct {
	ReportMeta
	Summary        SalesSummary         `json:"summary"`
	RevenueByMonth []MonthRevenue       `json:"revenue_by_month"`
	BySalesperson  []SalespersonRevenue `json:"by_salesperson"`
	Pipeline       []StageAmount        `json:"pipeline"`
	Funnel         []StageCount         `json:"funnel"`
	ConversionRate Rate                 `json:"conversion_rate"`
	AvgCloseDays   Figure               `json:"avg_close_days"`
}

// CitySegment counts contacts whose company is in a city
type CitySegment struct {
	City  string `json:"city"`
	Count int    `json:"count"`
}

// IndustrySegment counts contacts whose company is in an industry
type IndustrySegment struct {
	Industry string `json:"industry"`
	Count    int    `json:"count"`
}

// TopClient is a contact ranked by lifetime value
type TopClient struct {
	ContactID string  `json:"contact_id"`
	Name      string  `json:"name"`
	LTV       float64 `json:"ltv"`
	Deals     int     `json:"deals"`
}

// ClientsReport is the client segmentation view
type ClientsReport struct {
	ReportMeta
	TotalClients  int               `json:"total_clients"`
	NewClients    int               `json:"new_clients"`
	ActiveClients int               `json:"active_clients"`
	ByCity        []CitySegment     `json:"by_city"`
	ByIndustry    []IndustrySegment `json:"by_industry"`
	AvgBasket     Figure            `json:"avg_basket"`
	TopClients    []TopClient       `json:"top_clients"`
}

// LeaderboardRow is the performance of one salesperson
type LeaderboardRow struct {
	UserID      string  `json:"user_id"`
	Name        string  `json:"name"`
	Won         int     `json:"won"`
	Revenue     float64 `json:"revenue"`
	TotalLeads  int     `json:"total_leads"`
	SuccessRate Rate    `json:"success_rate"`
	Calls       int     `json:"calls"`
	Emails      int     `json:"emails"`
	Meetings    int     `json:"meetings"`
	TotalTasks  int     `json:"total_tasks"`
}

// CommercialsReport is the salesperson leaderboard
type CommercialsReport struct {
	ReportMeta
	Leaderboard []LeaderboardRow `json:"leaderboard"`
}

// InvoiceStatusRow is the count and amount of invoices in one status
type InvoiceStatusRow struct {
	Status string  `json:"status"`
	Count  int     `json:"count"`
	Amount float64 `json:"amount"`
}

// ForecastStage is the weighted value of one open pipeline stage
type ForecastStage struct {
	Stage       string  `json:"stage"`
	Count       int     `json:"count"`
	TotalAmount float64 `json:"total_amount"`
	Weight      float64 `json:"weight"`
	Weighted    float64 `json:"weighted"`
}

// FinancialReport is the invoicing and forecast view
type FinancialReport struct {
	ReportMeta
	ByStatus        []InvoiceStatusRow `json:"by_status"`
	TotalInvoiced   float64            `json:"total_invoiced"`
	AvgPaymentDelay Figure             `json:"avg_payment_delay"`
	Forecast        float64            `json:"forecast"`
	ForecastVersion string             `json:"forecast_version"`
	ForecastByStage []ForecastStage    `json:"forecast_by_stage"`
	RevenueByMonth  []MonthAmount      `json:"revenue_by_month"`
}

// SourceCount is the number of leads from one channel
type SourceCount struct {
	Source string `json:"source"`
	Count  int    `json:"count"`
}

// EmailStats is the delivery and engagement of a set of emails
type EmailStats struct {
	Total     int  `json:"total"`
	Sent      int  `json:"sent"`
	Failed    int  `json:"failed"`
	Opened    int  `json:"opened"`
	Clicked   int  `json:"clicked"`
	OpenRate  Rate `json:"open_rate"`
	ClickRate Rate `json:"click_rate"`
}

// ChannelROI is the spend and return of one acquisition channel
type ChannelROI struct {
	Channel string  `json:"channel"`
	Cost    float64 `json:"cost"`
	Revenue float64 `json:"revenue"`
	Leads   int     `json:"leads"`
	Deals   int     `json:"deals"`
	ROI     Figure  `json:"roi"`
	ROAS    Figure  `json:"roas"`
}

// CampaignPerformance is the spend, return and engagement of one campaign
type CampaignPerformance struct {
	CampaignID string         `json:"campaign_id"`
	Name       string         `json:"name"`
	Type       CampaignType   `json:"type"`
	Status     CampaignStatus `json:"status"`
	Cost       float64        `json:"cost"`
	Revenue    float64        `json:"revenue"`
	Leads      int            `json:"leads"`
	Deals      int            `json:"deals"`
	ROI        Figure         `json:"roi"`
	ROAS       Figure         `json:"roas"`
	Email      EmailStats     `json:"email"`
}

// MarketingReport is the acquisition and campaign view
type MarketingReport struct {
	ReportMeta
	LeadsByMonth        []MonthCount          `json:"leads_by_month"`
	BySource            []SourceCount         `json:"by_source"`
	TotalLeads          int                   `json:"total_leads"`
	Funnel              []StageCount          `json:"funnel"`
	EmailStats          EmailStats            `json:"email_stats"`
	TotalExpenses       float64               `json:"total_expenses"`
	HasBudget           bool                  `json:"has_budget"`
	CostPerLead         Figure                `json:"cost_per_lead"`
	EmailROI            Figure                `json:"email_roi"`
	ROIByChannel        []ChannelROI          `json:"roi_by_channel"`
	CampaignPerformance []CampaignPerformance `json:"campaign_performance"`
}

// CampaignEmailStats is the email engagement of one campaign
type CampaignEmailStats struct {
	CampaignID     string         `json:"campaign_id"`
	CampaignName   string         `json:"campaign_name"`
	CampaignStatus CampaignStatus `json:"campaign_status"`
	LastSentAt     *time.Time     `json:"last_sent_at,omitempty"`
	EmailStats
}
