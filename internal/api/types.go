package api

// User describes the authenticated account as returned by /api/auth/me.
type User struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	IsAdmin   bool   `json:"is_admin"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
}

// LoginResponse is the token payload from /api/auth/login.
type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

// CPUMetrics holds instantaneous CPU load.
type CPUMetrics struct {
	Percent float64 `json:"percent"`
	Cores   int     `json:"cores"`
}

// MemoryMetrics holds memory utilization.
type MemoryMetrics struct {
	Percent float64 `json:"percent"`
	UsedGB  float64 `json:"used_gb"`
	TotalGB float64 `json:"total_gb"`
}

// DiskMetrics holds root filesystem utilization.
type DiskMetrics struct {
	Percent float64 `json:"percent"`
	UsedGB  float64 `json:"used_gb"`
	TotalGB float64 `json:"total_gb"`
}

// UptimeMetrics holds host uptime in both machine and human form.
type UptimeMetrics struct {
	Seconds   float64 `json:"seconds"`
	Formatted string  `json:"formatted"`
}

// MetricsSnapshot is one point-in-time reading of host metrics.
type MetricsSnapshot struct {
	CPU    CPUMetrics    `json:"cpu"`
	Memory MemoryMetrics `json:"memory"`
	Disk   DiskMetrics   `json:"disk"`
	Uptime UptimeMetrics `json:"uptime"`
}

// HistoryEntry is one stored sample from the server's metrics history.
// Numeric fields are plain float64 so samples with absent readings decode
// to zero instead of failing or being dropped.
type HistoryEntry struct {
	Timestamp string  `json:"timestamp"`
	CPU       float64 `json:"cpu"`
	Memory    float64 `json:"memory"`
	Disk      float64 `json:"disk"`
}

// SystemInfo is the host identification block embedded in the overview.
type SystemInfo struct {
	Hostname        string `json:"hostname"`
	Platform        string `json:"platform"`
	PlatformRelease string `json:"platform_release"`
	PlatformVersion string `json:"platform_version"`
	Architecture    string `json:"architecture"`
	Processor       string `json:"processor"`
}

// ServicesSummary is the running/stopped service tally in the overview.
type ServicesSummary struct {
	Running int `json:"running"`
	Stopped int `json:"stopped"`
	Total   int `json:"total"`
}

// Overview is the combined dashboard payload from /api/dashboard/overview.
// CurrentMetrics is a pointer because the server may send null before its
// first collection cycle completes.
type Overview struct {
	SystemInfo      SystemInfo       `json:"system_info"`
	CurrentMetrics  *MetricsSnapshot `json:"current_metrics"`
	MetricsHistory  []HistoryEntry   `json:"metrics_history"`
	ActiveAlerts    int              `json:"active_alerts"`
	ServicesSummary ServicesSummary  `json:"services_summary"`
	RecentLogs      int              `json:"recent_logs"`
	Timestamp       string           `json:"timestamp"`
}

// Service is one systemd unit as reported by /api/services/list.
type Service struct {
	Name        string `json:"name"`
	FullName    string `json:"full_name"`
	LoadState   string `json:"load_state"`
	ActiveState string `json:"active_state"`
	SubState    string `json:"sub_state"`
	Description string `json:"description"`
}

// ServiceList wraps the services endpoint response.
type ServiceList struct {
	Services []Service `json:"services"`
	Count    int       `json:"count"`
}

// ActionResult is the server's acknowledgment of a service action.
type ActionResult struct {
	Message string `json:"message"`
	Service string `json:"service"`
	Action  string `json:"action"`
	Success bool   `json:"success"`
}

// OSInfo identifies the installed distribution.
type OSInfo struct {
	Name     string `json:"name"`
	Version  string `json:"version"`
	ID       string `json:"id"`
	Codename string `json:"codename"`
}

// KernelInfo identifies the running kernel.
type KernelInfo struct {
	Name    string `json:"name"`
	Release string `json:"release"`
	Version string `json:"version"`
	Machine string `json:"machine"`
}

// HostInfo is the detailed host report from /api/system/info.
type HostInfo struct {
	Hostname string        `json:"hostname"`
	OS       OSInfo        `json:"os"`
	Kernel   KernelInfo    `json:"kernel"`
	Uptime   UptimeMetrics `json:"uptime"`
	Timezone string        `json:"timezone"`
	Locale   string        `json:"locale"`
}

// MessageResponse is the generic acknowledgment for power commands.
type MessageResponse struct {
	Message string `json:"message"`
	Warning string `json:"warning"`
}

// Service actions accepted by the management API.
const (
	ActionStart   = "start"
	ActionStop    = "stop"
	ActionRestart = "restart"
)
