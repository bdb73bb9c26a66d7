package content

// Patches carry the fields of a partial update. A nil field is left alone,
// a non-nil field fully replaces the stored value (including slices).

type DocumentPatch struct {
	Title    *string `json:"title,omitempty"`
	Content  *string `json:"content,omitempty"`
	Category *string `json:"category,omitempty"`
	Icon     *string `json:"icon,omitempty"`
	Slug     *string `json:"slug,omitempty"`
}

func (p DocumentPatch) Apply(d *Document) {
	setString(&d.Title, p.Title)
	setString(&d.Content, p.Content)
	setString(&d.Category, p.Category)
	setString(&d.Icon, p.Icon)
	setString(&d.Slug, p.Slug)
}

type TutorialPatch struct {
	Title         *string        `json:"title,omitempty"`
	Summary       *string        `json:"summary,omitempty"`
	Content       *string        `json:"content,omitempty"`
	Prerequisites *[]string      `json:"prerequisites,omitempty"`
	CodeSnippets  *[]CodeSnippet `json:"codeSnippets,omitempty"`
	Tags          *[]string      `json:"tags,omitempty"`
	ReadTime      *int           `json:"readTime,omitempty"`
	Featured      *int           `json:"featured,omitempty"`
	Slug          *string        `json:"slug,omitempty"`
}

func (p TutorialPatch) Apply(t *Tutorial) {
	setString(&t.Title, p.Title)
	setString(&t.Summary, p.Summary)
	setString(&t.Content, p.Content)
	setString(&t.Slug, p.Slug)
	if p.Prerequisites != nil {
		t.Prerequisites = append([]string(nil), (*p.Prerequisites)...)
	}
	if p.CodeSnippets != nil {
		t.CodeSnippets = append([]CodeSnippet(nil), (*p.CodeSnippets)...)
	}
	if p.Tags != nil {
		t.Tags = append([]string(nil), (*p.Tags)...)
	}
	if p.ReadTime != nil {
		t.ReadTime = *p.ReadTime
	}
	if p.Featured != nil {
		t.Featured = *p.Featured
	}
}

type ServicePatch struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Icon        *string `json:"icon,omitempty"`
	Status      *string `json:"status,omitempty"`
	Version     *string `json:"version,omitempty"`
	IPAddress   *string `json:"ipAddress,omitempty"`
	Platform    *string `json:"platform,omitempty"`
	ConfigLink  *string `json:"configLink,omitempty"`
	AdminLink   *string `json:"adminLink,omitempty"`
}

func (p ServicePatch) Apply(s *Service) {
	setString(&s.Name, p.Name)
	setString(&s.Description, p.Description)
	setString(&s.Icon, p.Icon)
	setString(&s.Status, p.Status)
	setString(&s.Version, p.Version)
	setString(&s.IPAddress, p.IPAddress)
	setString(&s.Platform, p.Platform)
	setString(&s.ConfigLink, p.ConfigLink)
	setString(&s.AdminLink, p.AdminLink)
}

type UserPatch struct {
	Username *string `json:"username,omitempty"`
	Password *string `json:"password,omitempty"`
	Email    *string `json:"email,omitempty"`
	Role     *string `json:"role,omitempty"`
}

func (p UserPatch) Apply(u *User) {
	setString(&u.Username, p.Username)
	setString(&u.Password, p.Password)
	setString(&u.Email, p.Email)
	setString(&u.Role, p.Role)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
