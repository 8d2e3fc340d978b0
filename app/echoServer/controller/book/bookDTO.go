package book

type BookReq struct {
	Title           string  `json:"title" validate:"required,max=255"`
	Author          string  `json:"author" validate:"required,max=255"`
	Description     *string `json:"description,omitempty"`
	Genre           *string `json:"genre,omitempty"`
	PublicationYear *int    `json:"publication_year,omitempty" validate:"omitempty,gte=0,lte=2100"`
	Condition       string  `json:"condition,omitempty" validate:"omitempty,oneof=EXCELLENT GOOD FAIR POOR"`
}
