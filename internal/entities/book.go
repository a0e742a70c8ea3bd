package entities

type Format string

const (
	FormatPDF  Format = "pdf"
	FormatEPUB Format = "epub"
)

// DefaultLanguage is assumed for catalog entries that do not declare one.
const DefaultLanguage = "English"

// DownloadFormat is an alternate file a book can be downloaded as.
type DownloadFormat struct {
	Format Format `toml:"format" json:"format"`
	URL    string `toml:"url" json:"url"`
}

// Book is a static catalog entry. Books are loaded once at startup and never mutated.
type Book struct {
	ID              string           `toml:"id" json:"id"`
	Title           string           `toml:"title" json:"title"`
	Author          string           `toml:"author" json:"author"`
	Genre           string           `toml:"genre" json:"genre"`
	Genres          []string         `toml:"genres" json:"genres,omitempty"`
	Rating          float64          `toml:"rating" json:"rating"`
	Pages           int              `toml:"pages" json:"pages"`
	Cover           string           `toml:"cover" json:"cover,omitempty"`
	Format          Format           `toml:"format" json:"format"`
	FileURL         string           `toml:"file_url" json:"fileUrl"`
	DownloadFormats []DownloadFormat `toml:"download_formats" json:"downloadFormats,omitempty"`

	Publisher   string `toml:"publisher" json:"publisher,omitempty"`
	PublishDate string `toml:"publish_date" json:"publishDate,omitempty"`
	ISBN        string `toml:"isbn" json:"isbn,omitempty"`
	Language    string `toml:"language" json:"language,omitempty"`
	SamplePages int    `toml:"sample_pages" json:"samplePages,omitempty"`
	Synopsis    string `toml:"synopsis" json:"synopsis,omitempty"`
	SampleText  string `toml:"sample_text" json:"sampleText,omitempty"`
}

// LanguageOrDefault returns the declared language, or DefaultLanguage when unset.
func (b Book) LanguageOrDefault() string {
	if b.Language == "" {
		return DefaultLanguage
	}
	return b.Language
}

// AllGenres returns the primary genre followed by any tag genres not already listed.
func (b Book) AllGenres() []string {
	seen := map[string]bool{}
	var out []string
	for _, g := range append([]string{b.Genre}, b.Genres...) {
		if g == "" || seen[g] {
			continue
		}
		seen[g] = true
		out = append(out, g)
	}
	return out
}
