package dto

type UploadMediaResponse struct {
	ObjectKey string `json:"object_key"`
	URL       string `json:"url"`
}
