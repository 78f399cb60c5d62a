package models

type DownloadItem struct {
	RemotePath string `json:"remote_path"`
	LocalPath  string `json:"local_path"`
	Status     string `json:"status"`
	Size       int64  `json:"size"`
	Error      string `json:"error,omitempty"`
}

type DownloadResult struct {
	Backend          string         `json:"backend"`
	OutputDir        string         `json:"output_dir"`
	RunID            string         `json:"run_id"`
	Items            []DownloadItem `json:"items"`
	Succeeded        int            `json:"succeeded"`
	Skipped          int            `json:"skipped"`
	Failed           int            `json:"failed"`
	TotalFiles       int            `json:"total_files"`
	TotalSizeBytes   int64          `json:"total_size_bytes"`
	TotalSizeHuman   string         `json:"total_size_human"`
	OperationTime    string         `json:"operation_time"`
	DownloadDuration string         `json:"download_duration"`
	Archive          *ArchiveInfo   `json:"archive,omitempty"`
}

type FindResult struct {
	Globs         []GlobSpec `json:"globs"`
	Files         []string   `json:"files"`
	Count         int        `json:"count"`
	OperationTime string     `json:"operation_time"`
}
