package dto

type StationListResponse struct {
	Stations []string `json:"stations"`
}
