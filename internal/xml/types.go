package xml

// Atom element names
const (
	TagFeed     = "feed"
	TagEntry    = "entry"
	TagID       = "id"
	TagLink     = "link"
	TagTitle    = "title"
	TagSummary  = "summary"
	TagContent  = "content"
	TagCategory = "category"
)

// Batch namespace element names. TagID is shared with Atom.
const (
	TagOperation   = "operation"
	TagStatus      = "status"
	TagInterrupted = "interrupted"
)

// GData and gCal element names
const (
	TagWhen         = "when"
	TagWhere        = "where"
	TagTransparency = "transparency"
	TagEventStatus  = "eventStatus"
	TagTimezone     = "timezone"
	TagColor        = "color"
)

// Attribute names
const (
	AttrRel         = "rel"
	AttrHref        = "href"
	AttrType        = "type"
	AttrCode        = "code"
	AttrValue       = "value"
	AttrScheme      = "scheme"
	AttrTerm        = "term"
	AttrStartTime   = "startTime"
	AttrEndTime     = "endTime"
	AttrValueString = "valueString"
)

// Link relations and content types
const (
	RelEdit         = "edit"
	RelAlternate    = "alternate"
	ContentTypeAtom = "application/atom+xml"
	TextType        = "text"
)
