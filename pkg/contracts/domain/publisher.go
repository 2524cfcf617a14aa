package domain

// Publisher is an organisation publishing transparency data, identified by
// its registry id
type Publisher struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// PublisherStats is the per-publisher aggregate bundle read from the
// aggregated-publisher statistics
type PublisherStats struct {
	Organisations     int64    `json:"organisations"`
	ActivityFiles     int64    `json:"activity_files"`
	OrganisationFiles int64    `json:"organisation_files"`
	FileSize          int64    `json:"file_size"`
	ReportingOrgs     []string `json:"reporting_orgs"`
	Hierarchies       []string `json:"hierarchies"`
}

// Files is the total number of files, activity and organisation
func (s PublisherStats) Files() int64 {
	return s.ActivityFiles + s.OrganisationFiles
}
