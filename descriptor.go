package tsdemux

import (
	"bytes"
	"time"

	"github.com/icza/bitio"
	"github.com/pkg/errors"
)

// Audio types
// Page: 683 | https://books.google.fr/books?id=6dgWB3-rChYC&printsec=frontcover&hl=fr
const (
	AudioTypeCleanEffects             = 0x1
	AudioTypeHearingImpaired          = 0x2
	AudioTypeVisualImpairedCommentary = 0x3
)

// Descriptor tags
// Page: 42 | Chapter: 6.1 | Link: https://www.dvb.org/resources/public/standards/a38_dvb-si_specification.pdf
const (
	DescriptorTagAC3                        = 0x6a
	DescriptorTagCA                         = 0x09
	DescriptorTagComponent                  = 0x50
	DescriptorTagContent                    = 0x54
	DescriptorTagEnhancedAC3                = 0x7a
	DescriptorTagExtendedEvent              = 0x4e
	DescriptorTagExtension                  = 0x7f
	DescriptorTagISO639LanguageAndAudioType = 0x0a
	DescriptorTagLocalTimeOffset            = 0x58
	DescriptorTagMaximumBitrate             = 0x0e
	DescriptorTagNetworkName                = 0x40
	DescriptorTagParentalRating             = 0x55
	DescriptorTagService                    = 0x48
	DescriptorTagServiceList                = 0x41
	DescriptorTagShortEvent                 = 0x4d
	DescriptorTagStreamIdentifier           = 0x52
	DescriptorTagSubtitling                 = 0x59
	DescriptorTagTeletext                   = 0x56
)

// Descriptor extension tags
// Page: 111 | Chapter: 6.1 | Link: https://www.dvb.org/resources/public/standards/a38_dvb-si_specification.pdf
const (
	DescriptorTagExtensionSupplementaryAudio = 0x6
)

// Service types
// Page: 97 | Chapter: 6.2.33 | Link: https://www.dvb.org/resources/public/standards/a38_dvb-si_specification.pdf
const (
	ServiceTypeDigitalTelevisionService = 0x1
)

// Teletext types
// Page: 106 | Chapter: 6.2.43 | Link: https://www.dvb.org/resources/public/standards/a38_dvb-si_specification.pdf
const (
	TeletextTypeAdditionalInformationPage                    = 0x3
	TeletextTypeInitialTeletextPage                          = 0x1
	TeletextTypeProgramSchedulePage                          = 0x4
	TeletextTypeTeletextSubtitlePage                         = 0x2
	TeletextTypeTeletextSubtitlePageForHearingImpairedPeople = 0x5
)

// Descriptor represents a descriptor. Unrecognized tags and payloads that fail
// their tag-specific decoder are preserved in Raw with IsParsed set to false;
// a bad descriptor never fails the enclosing section.
type Descriptor struct {
	IsParsed bool
	Length   uint8
	Raw      []byte
	Tag      uint8 // the tag defines the structure of the contained data following the descriptor length.

	AC3                        *DescriptorAC3
	CA                         *DescriptorCA
	Component                  *DescriptorComponent
	Content                    *DescriptorContent
	EnhancedAC3                *DescriptorEnhancedAC3
	ExtendedEvent              *DescriptorExtendedEvent
	Extension                  *DescriptorExtension
	ISO639LanguageAndAudioType *DescriptorISO639LanguageAndAudioType
	LocalTimeOffset            *DescriptorLocalTimeOffset
	MaximumBitrate             *DescriptorMaximumBitrate
	NetworkName                *DescriptorNetworkName
	ParentalRating             *DescriptorParentalRating
	Service                    *DescriptorService
	ServiceList                *DescriptorServiceList
	ShortEvent                 *DescriptorShortEvent
	StreamIdentifier           *DescriptorStreamIdentifier
	Subtitling                 *DescriptorSubtitling
	Teletext                   *DescriptorTeletext
}

// DescriptorAC3 represents an AC3 descriptor
// Page: 165 | https://www.dvb.org/resources/public/standards/a38_dvb-si_specification.pdf
type DescriptorAC3 struct {
	AdditionalInfo   []byte
	ASVC             uint8
	BSID             uint8
	ComponentType    uint8
	HasASVC          bool
	HasBSID          bool
	HasComponentType bool
	HasMainID        bool
	MainID           uint8
}

func newDescriptorAC3(i []byte) (d *DescriptorAC3, err error) {
	if len(i) < 1 {
		err = errShortDescriptor
		return
	}
	var offset int
	d = &DescriptorAC3{}
	d.HasComponentType = i[offset]&0x80 > 0
	d.HasBSID = i[offset]&0x40 > 0
	d.HasMainID = i[offset]&0x20 > 0
	d.HasASVC = i[offset]&0x10 > 0
	offset += 1
	for _, f := range []struct {
		has bool
		dst *uint8
	}{
		{d.HasComponentType, &d.ComponentType},
		{d.HasBSID, &d.BSID},
		{d.HasMainID, &d.MainID},
		{d.HasASVC, &d.ASVC},
	} {
		if !f.has {
			continue
		}
		if offset >= len(i) {
			err = errShortDescriptor
			return
		}
		*f.dst = i[offset]
		offset += 1
	}
	d.AdditionalInfo = i[offset:]
	return
}

// DescriptorCA represents a conditional access descriptor
// Chapter: 2.6.16 | ITU-T H.222.0
type DescriptorCA struct {
	CAPID       uint16
	CASystemID  uint16
	PrivateData []byte
}

func newDescriptorCA(i []byte) (d *DescriptorCA, err error) {
	if len(i) < 4 {
		err = errShortDescriptor
		return
	}
	d = &DescriptorCA{
		CAPID:       uint16(i[2]&0x1f)<<8 | uint16(i[3]),
		CASystemID:  uint16(i[0])<<8 | uint16(i[1]),
		PrivateData: i[4:],
	}
	return
}

// DescriptorComponent represents a component descriptor
// Page: 51 | https://www.dvb.org/resources/public/standards/a38_dvb-si_specification.pdf
type DescriptorComponent struct {
	ComponentTag       uint8
	ComponentType      uint8
	ISO639LanguageCode []byte
	StreamContent      uint8
	StreamContentExt   uint8
	Text               []byte
}

func newDescriptorComponent(i []byte) (d *DescriptorComponent, err error) {
	if len(i) < 6 {
		err = errShortDescriptor
		return
	}
	d = &DescriptorComponent{
		ComponentTag:       i[2],
		ComponentType:      i[1],
		ISO639LanguageCode: i[3:6],
		StreamContent:      i[0] & 0xf,
		StreamContentExt:   i[0] >> 4,
		Text:               i[6:],
	}
	return
}

// DescriptorContent represents a content descriptor
// Page: 58 | https://www.dvb.org/resources/public/standards/a38_dvb-si_specification.pdf
type DescriptorContent struct {
	Items []*DescriptorContentItem
}

// DescriptorContentItem represents a content item descriptor
// Check page 59 of https://www.dvb.org/resources/public/standards/a38_dvb-si_specification.pdf for content nibble
// levels associations
type DescriptorContentItem struct {
	ContentNibbleLevel1 uint8
	ContentNibbleLevel2 uint8
	UserByte            uint8
}

func newDescriptorContent(i []byte) (d *DescriptorContent, err error) {
	if len(i)%2 != 0 {
		err = errors.Errorf("tsdemux: content descriptor length %d is not a multiple of 2", len(i))
		return
	}
	d = &DescriptorContent{}
	for offset := 0; offset < len(i); offset += 2 {
		d.Items = append(d.Items, &DescriptorContentItem{
			ContentNibbleLevel1: i[offset] >> 4,
			ContentNibbleLevel2: i[offset] & 0xf,
			UserByte:            i[offset+1],
		})
	}
	return
}

// DescriptorEnhancedAC3 represents an enhanced AC3 descriptor
// Page: 166 | https://www.dvb.org/resources/public/standards/a38_dvb-si_specification.pdf
type DescriptorEnhancedAC3 struct {
	AdditionalInfo   []byte
	ASVC             uint8
	BSID             uint8
	ComponentType    uint8
	HasASVC          bool
	HasBSID          bool
	HasComponentType bool
	HasMainID        bool
	HasSubStream1    bool
	HasSubStream2    bool
	HasSubStream3    bool
	MainID           uint8
	MixInfoExists    bool
	SubStream1       uint8
	SubStream2       uint8
	SubStream3       uint8
}

func newDescriptorEnhancedAC3(i []byte) (d *DescriptorEnhancedAC3, err error) {
	if len(i) < 1 {
		err = errShortDescriptor
		return
	}
	var offset int
	d = &DescriptorEnhancedAC3{}
	d.HasComponentType = i[offset]&0x80 > 0
	d.HasBSID = i[offset]&0x40 > 0
	d.HasMainID = i[offset]&0x20 > 0
	d.HasASVC = i[offset]&0x10 > 0
	d.MixInfoExists = i[offset]&0x8 > 0
	d.HasSubStream1 = i[offset]&0x4 > 0
	d.HasSubStream2 = i[offset]&0x2 > 0
	d.HasSubStream3 = i[offset]&0x1 > 0
	offset += 1
	for _, f := range []struct {
		has bool
		dst *uint8
	}{
		{d.HasComponentType, &d.ComponentType},
		{d.HasBSID, &d.BSID},
		{d.HasMainID, &d.MainID},
		{d.HasASVC, &d.ASVC},
		{d.HasSubStream1, &d.SubStream1},
		{d.HasSubStream2, &d.SubStream2},
		{d.HasSubStream3, &d.SubStream3},
	} {
		if !f.has {
			continue
		}
		if offset >= len(i) {
			err = errShortDescriptor
			return
		}
		*f.dst = i[offset]
		offset += 1
	}
	d.AdditionalInfo = i[offset:]
	return
}

// DescriptorExtendedEvent represents an extended event descriptor
// Page: 60 | https://www.dvb.org/resources/public/standards/a38_dvb-si_specification.pdf
type DescriptorExtendedEvent struct {
	ISO639LanguageCode   []byte
	Items                []*DescriptorExtendedEventItem
	LastDescriptorNumber uint8
	Number               uint8
	Text                 []byte
}

// DescriptorExtendedEventItem represents an extended event item descriptor
type DescriptorExtendedEventItem struct {
	Content     []byte
	Description []byte
}

func newDescriptorExtendedEvent(i []byte) (d *DescriptorExtendedEvent, err error) {
	if len(i) < 5 {
		err = errShortDescriptor
		return
	}
	var offset int
	d = &DescriptorExtendedEvent{}
	d.Number = i[offset] >> 4
	d.LastDescriptorNumber = i[offset] & 0xf
	offset += 1
	d.ISO639LanguageCode = i[offset : offset+3]
	offset += 3
	itemsLength := int(i[offset])
	offset += 1
	offsetEnd := offset + itemsLength
	if offsetEnd > len(i) {
		err = errShortDescriptor
		return
	}
	for offset < offsetEnd {
		var itm *DescriptorExtendedEventItem
		if itm, err = newDescriptorExtendedEventItem(i, &offset, offsetEnd); err != nil {
			return
		}
		d.Items = append(d.Items, itm)
	}
	if offset >= len(i) {
		err = errShortDescriptor
		return
	}
	textLength := int(i[offset])
	offset += 1
	if offset+textLength > len(i) {
		err = errShortDescriptor
		return
	}
	d.Text = i[offset : offset+textLength]
	return
}

func newDescriptorExtendedEventItem(i []byte, offset *int, offsetEnd int) (d *DescriptorExtendedEventItem, err error) {
	d = &DescriptorExtendedEventItem{}
	descriptionLength := int(i[*offset])
	*offset += 1
	if *offset+descriptionLength > offsetEnd {
		err = errShortDescriptor
		return
	}
	d.Description = i[*offset : *offset+descriptionLength]
	*offset += descriptionLength
	if *offset >= offsetEnd {
		err = errShortDescriptor
		return
	}
	contentLength := int(i[*offset])
	*offset += 1
	if *offset+contentLength > offsetEnd {
		err = errShortDescriptor
		return
	}
	d.Content = i[*offset : *offset+contentLength]
	*offset += contentLength
	return
}

// DescriptorExtension represents an extension descriptor
// Page: 72 | https://www.dvb.org/resources/public/standards/a38_dvb-si_specification.pdf
type DescriptorExtension struct {
	SupplementaryAudio *DescriptorExtensionSupplementaryAudio
	Tag                uint8
}

func newDescriptorExtension(i []byte) (d *DescriptorExtension, err error) {
	if len(i) < 1 {
		err = errShortDescriptor
		return
	}
	d = &DescriptorExtension{Tag: i[0]}
	b := i[1:]
	switch d.Tag {
	case DescriptorTagExtensionSupplementaryAudio:
		if d.SupplementaryAudio, err = newDescriptorExtensionSupplementaryAudio(b); err != nil {
			return
		}
	default:
		logger.Debugf("tsdemux: unlisted extension tag 0x%x", d.Tag)
	}
	return
}

// DescriptorExtensionSupplementaryAudio represents a supplementary audio extension descriptor
// Page: 130 | https://www.dvb.org/resources/public/standards/a38_dvb-si_specification.pdf
type DescriptorExtensionSupplementaryAudio struct {
	EditorialClassification uint8
	HasLanguageCode         bool
	LanguageCode            []byte
	MixType                 bool
	PrivateData             []byte
}

func newDescriptorExtensionSupplementaryAudio(i []byte) (d *DescriptorExtensionSupplementaryAudio, err error) {
	if len(i) < 1 {
		err = errShortDescriptor
		return
	}
	var offset int
	d = &DescriptorExtensionSupplementaryAudio{}
	d.MixType = i[offset]&0x80 > 0
	d.EditorialClassification = i[offset] >> 2 & 0x1f
	d.HasLanguageCode = i[offset]&0x1 > 0
	offset += 1
	if d.HasLanguageCode {
		if offset+3 > len(i) {
			err = errShortDescriptor
			return
		}
		d.LanguageCode = i[offset : offset+3]
		offset += 3
	}
	d.PrivateData = i[offset:]
	return
}

// DescriptorISO639LanguageAndAudioType represents an ISO639 language descriptor
// Chapter: 2.6.18 | ITU-T H.222.0
type DescriptorISO639LanguageAndAudioType struct {
	Items []*DescriptorISO639LanguageAndAudioTypeItem
}

// DescriptorISO639LanguageAndAudioTypeItem represents one (language, audio type) pair
type DescriptorISO639LanguageAndAudioTypeItem struct {
	Language []byte
	Type     uint8
}

func newDescriptorISO639LanguageAndAudioType(i []byte) (d *DescriptorISO639LanguageAndAudioType, err error) {
	if len(i)%4 != 0 {
		err = errors.Errorf("tsdemux: ISO639 descriptor length %d is not a multiple of 4", len(i))
		return
	}
	d = &DescriptorISO639LanguageAndAudioType{}
	for offset := 0; offset < len(i); offset += 4 {
		d.Items = append(d.Items, &DescriptorISO639LanguageAndAudioTypeItem{
			Language: i[offset : offset+3],
			Type:     i[offset+3],
		})
	}
	return
}

// DescriptorLocalTimeOffset represents a local time offset descriptor
// Page: 84 | Link: https://www.dvb.org/resources/public/standards/a38_dvb-si_specification.pdf
type DescriptorLocalTimeOffset struct {
	Items []*DescriptorLocalTimeOffsetItem
}

// DescriptorLocalTimeOffsetItem represents a local time offset item descriptor
type DescriptorLocalTimeOffsetItem struct {
	CountryCode             []byte
	CountryRegionID         uint8
	LocalTimeOffset         time.Duration
	LocalTimeOffsetPolarity bool
	NextTimeOffset          time.Duration
	TimeOfChange            time.Time
}

func newDescriptorLocalTimeOffset(i []byte) (d *DescriptorLocalTimeOffset, err error) {
	if len(i)%13 != 0 {
		err = errors.Errorf("tsdemux: local time offset descriptor length %d is not a multiple of 13", len(i))
		return
	}
	d = &DescriptorLocalTimeOffset{}
	r := bitio.NewCountReader(bytes.NewReader(i))
	for offset := 0; offset < len(i); offset += 13 {
		itm := &DescriptorLocalTimeOffsetItem{CountryCode: i[offset : offset+3]}
		r.TryReadBits(24) // Country code read above
		itm.CountryRegionID = uint8(r.TryReadBits(6))
		r.TryReadBool() // Reserved
		itm.LocalTimeOffsetPolarity = r.TryReadBool()
		if itm.LocalTimeOffset, err = parseDVBDurationMinutes(r); err != nil {
			return
		}
		if itm.TimeOfChange, err = parseDVBTime(r); err != nil {
			return
		}
		if itm.NextTimeOffset, err = parseDVBDurationMinutes(r); err != nil {
			return
		}
		d.Items = append(d.Items, itm)
	}
	return d, r.TryError
}

// DescriptorMaximumBitrate represents a maximum bitrate descriptor
type DescriptorMaximumBitrate struct {
	Bitrate uint32 // In bytes/second
}

func newDescriptorMaximumBitrate(i []byte) (d *DescriptorMaximumBitrate, err error) {
	if len(i) < 3 {
		err = errShortDescriptor
		return
	}
	return &DescriptorMaximumBitrate{Bitrate: (uint32(i[0]&0x3f)<<16 | uint32(i[1])<<8 | uint32(i[2])) * 50}, nil
}

// DescriptorNetworkName represents a network name descriptor
// Page: 93 | Chapter: 6.2.27 | Link: https://www.dvb.org/resources/public/standards/a38_dvb-si_specification.pdf
type DescriptorNetworkName struct {
	Name []byte
}

func newDescriptorNetworkName(i []byte) (*DescriptorNetworkName, error) {
	return &DescriptorNetworkName{Name: i}, nil
}

// DescriptorParentalRating represents a parental rating descriptor
// Page: 93 | Link: https://www.dvb.org/resources/public/standards/a38_dvb-si_specification.pdf
type DescriptorParentalRating struct {
	Items []*DescriptorParentalRatingItem
}

// DescriptorParentalRatingItem represents a parental rating item descriptor
type DescriptorParentalRatingItem struct {
	CountryCode []byte
	Rating      uint8
}

// MinimumAge returns the minimum age for the parental rating
func (d DescriptorParentalRatingItem) MinimumAge() int {
	// Undefined or user defined ratings
	if d.Rating == 0 || d.Rating > 0x10 {
		return 0
	}
	return int(d.Rating) + 3
}

func newDescriptorParentalRating(i []byte) (d *DescriptorParentalRating, err error) {
	if len(i)%4 != 0 {
		err = errors.Errorf("tsdemux: parental rating descriptor length %d is not a multiple of 4", len(i))
		return
	}
	d = &DescriptorParentalRating{}
	for offset := 0; offset < len(i); offset += 4 {
		d.Items = append(d.Items, &DescriptorParentalRatingItem{
			CountryCode: i[offset : offset+3],
			Rating:      i[offset+3],
		})
	}
	return
}

// DescriptorService represents a service descriptor
// Page: 96 | Chapter: 6.2.33 | Link: https://www.dvb.org/resources/public/standards/a38_dvb-si_specification.pdf
type DescriptorService struct {
	Name     []byte
	Provider []byte
	Type     uint8
}

func newDescriptorService(i []byte) (d *DescriptorService, err error) {
	if len(i) < 3 {
		err = errShortDescriptor
		return
	}
	var offset int
	d = &DescriptorService{Type: i[offset]}
	offset += 1
	providerLength := int(i[offset])
	offset += 1
	if offset+providerLength >= len(i) {
		err = errShortDescriptor
		return
	}
	d.Provider = i[offset : offset+providerLength]
	offset += providerLength
	nameLength := int(i[offset])
	offset += 1
	if offset+nameLength > len(i) {
		err = errShortDescriptor
		return
	}
	d.Name = i[offset : offset+nameLength]
	return
}

// DescriptorServiceList represents a service list descriptor
// Page: 98 | Chapter: 6.2.35 | Link: https://www.dvb.org/resources/public/standards/a38_dvb-si_specification.pdf
type DescriptorServiceList struct {
	Items []*DescriptorServiceListItem
}

// DescriptorServiceListItem represents a service list item
type DescriptorServiceListItem struct {
	ServiceID   uint16
	ServiceType uint8
}

func newDescriptorServiceList(i []byte) (d *DescriptorServiceList, err error) {
	if len(i)%3 != 0 {
		err = errors.Errorf("tsdemux: service list descriptor length %d is not a multiple of 3", len(i))
		return
	}
	d = &DescriptorServiceList{}
	for offset := 0; offset < len(i); offset += 3 {
		d.Items = append(d.Items, &DescriptorServiceListItem{
			ServiceID:   uint16(i[offset])<<8 | uint16(i[offset+1]),
			ServiceType: i[offset+2],
		})
	}
	return
}

// DescriptorShortEvent represents a short event descriptor
// Page: 99 | Chapter: 6.2.37 | Link: https://www.dvb.org/resources/public/standards/a38_dvb-si_specification.pdf
type DescriptorShortEvent struct {
	EventName []byte
	Language  []byte
	Text      []byte
}

func newDescriptorShortEvent(i []byte) (d *DescriptorShortEvent, err error) {
	if len(i) < 5 {
		err = errShortDescriptor
		return
	}
	var offset int
	d = &DescriptorShortEvent{}
	d.Language = i[:3]
	offset += 3
	length := int(i[offset])
	offset += 1
	if offset+length >= len(i) {
		err = errShortDescriptor
		return
	}
	d.EventName = i[offset : offset+length]
	offset += length
	length = int(i[offset])
	offset += 1
	if offset+length > len(i) {
		err = errShortDescriptor
		return
	}
	d.Text = i[offset : offset+length]
	return
}

// DescriptorStreamIdentifier represents a stream identifier descriptor
// Page: 102 | Chapter: 6.2.39 | Link: https://www.dvb.org/resources/public/standards/a38_dvb-si_specification.pdf
type DescriptorStreamIdentifier struct{ ComponentTag uint8 }

func newDescriptorStreamIdentifier(i []byte) (*DescriptorStreamIdentifier, error) {
	if len(i) < 1 {
		return nil, errShortDescriptor
	}
	return &DescriptorStreamIdentifier{ComponentTag: i[0]}, nil
}

// DescriptorSubtitling represents a subtitling descriptor
// Page: 103 | Chapter: 6.2.41 | Link: https://www.dvb.org/resources/public/standards/a38_dvb-si_specification.pdf
type DescriptorSubtitling struct {
	Items []*DescriptorSubtitlingItem
}

// DescriptorSubtitlingItem represents subtitling descriptor item
type DescriptorSubtitlingItem struct {
	AncillaryPageID   uint16
	CompositionPageID uint16
	Language          []byte
	Type              uint8
}

func newDescriptorSubtitling(i []byte) (d *DescriptorSubtitling, err error) {
	if len(i)%8 != 0 {
		err = errors.Errorf("tsdemux: subtitling descriptor length %d is not a multiple of 8", len(i))
		return
	}
	d = &DescriptorSubtitling{}
	for offset := 0; offset < len(i); offset += 8 {
		d.Items = append(d.Items, &DescriptorSubtitlingItem{
			AncillaryPageID:   uint16(i[offset+6])<<8 | uint16(i[offset+7]),
			CompositionPageID: uint16(i[offset+4])<<8 | uint16(i[offset+5]),
			Language:          i[offset : offset+3],
			Type:              i[offset+3],
		})
	}
	return
}

// DescriptorTeletext represents a teletext descriptor
// Page: 105 | Chapter: 6.2.43 | Link: https://www.dvb.org/resources/public/standards/a38_dvb-si_specification.pdf
type DescriptorTeletext struct {
	Items []*DescriptorTeletextItem
}

// DescriptorTeletextItem represents a teletext descriptor item
type DescriptorTeletextItem struct {
	Language []byte
	Magazine uint8
	Page     uint8
	Type     uint8
}

func newDescriptorTeletext(i []byte) (d *DescriptorTeletext, err error) {
	if len(i)%5 != 0 {
		err = errors.Errorf("tsdemux: teletext descriptor length %d is not a multiple of 5", len(i))
		return
	}
	d = &DescriptorTeletext{}
	for offset := 0; offset < len(i); offset += 5 {
		d.Items = append(d.Items, &DescriptorTeletextItem{
			Language: i[offset : offset+3],
			Magazine: i[offset+3] & 0x7,
			Page:     i[offset+4]>>4*10 + i[offset+4]&0xf,
			Type:     i[offset+3] >> 3,
		})
	}
	return
}

var errShortDescriptor = errors.New("tsdemux: descriptor payload is too short")

// parsePayload dispatches to the tag-specific decoder and flips IsParsed on
// success. Decoder failures leave the raw bytes available and are only logged.
func (d *Descriptor) parsePayload(b []byte) {
	var err error
	switch d.Tag {
	case DescriptorTagAC3:
		d.AC3, err = newDescriptorAC3(b)
	case DescriptorTagCA:
		d.CA, err = newDescriptorCA(b)
	case DescriptorTagComponent:
		d.Component, err = newDescriptorComponent(b)
	case DescriptorTagContent:
		d.Content, err = newDescriptorContent(b)
	case DescriptorTagEnhancedAC3:
		d.EnhancedAC3, err = newDescriptorEnhancedAC3(b)
	case DescriptorTagExtendedEvent:
		d.ExtendedEvent, err = newDescriptorExtendedEvent(b)
	case DescriptorTagExtension:
		d.Extension, err = newDescriptorExtension(b)
	case DescriptorTagISO639LanguageAndAudioType:
		d.ISO639LanguageAndAudioType, err = newDescriptorISO639LanguageAndAudioType(b)
	case DescriptorTagLocalTimeOffset:
		d.LocalTimeOffset, err = newDescriptorLocalTimeOffset(b)
	case DescriptorTagMaximumBitrate:
		d.MaximumBitrate, err = newDescriptorMaximumBitrate(b)
	case DescriptorTagNetworkName:
		d.NetworkName, err = newDescriptorNetworkName(b)
	case DescriptorTagParentalRating:
		d.ParentalRating, err = newDescriptorParentalRating(b)
	case DescriptorTagService:
		d.Service, err = newDescriptorService(b)
	case DescriptorTagServiceList:
		d.ServiceList, err = newDescriptorServiceList(b)
	case DescriptorTagShortEvent:
		d.ShortEvent, err = newDescriptorShortEvent(b)
	case DescriptorTagStreamIdentifier:
		d.StreamIdentifier, err = newDescriptorStreamIdentifier(b)
	case DescriptorTagSubtitling:
		d.Subtitling, err = newDescriptorSubtitling(b)
	case DescriptorTagTeletext:
		d.Teletext, err = newDescriptorTeletext(b)
	default:
		logger.Debugf("tsdemux: unlisted descriptor tag 0x%x", d.Tag)
		return
	}
	if err != nil {
		logger.Debugf("tsdemux: parsing descriptor tag 0x%x failed: %s", d.Tag, err)
		return
	}
	d.IsParsed = true
}

// parseDescriptorList parses concatenated descriptors in i between *offset and
// end. A descriptor overrunning the region fails the list; a descriptor whose
// own payload is malformed is preserved unparsed.
func parseDescriptorList(i []byte, offset *int, end int) (o []*Descriptor, err error) {
	if end > len(i) {
		err = errors.Errorf("tsdemux: descriptor region end %d exceeds slice length %d", end, len(i))
		return
	}
	for *offset+2 <= end {
		d := &Descriptor{
			Length: i[*offset+1],
			Tag:    i[*offset],
		}
		*offset += 2
		if *offset+int(d.Length) > end {
			err = errors.Errorf("tsdemux: descriptor tag 0x%x length %d overruns its region", d.Tag, d.Length)
			return
		}
		d.Raw = i[*offset : *offset+int(d.Length)]
		d.parsePayload(d.Raw)
		*offset += int(d.Length)
		o = append(o, d)
	}
	if *offset != end {
		err = errors.Errorf("tsdemux: %d stray bytes at end of descriptor region", end-*offset)
		return
	}
	return
}

// parseDescriptors parses a 12-bit length-prefixed descriptor loop (the top 4
// bits of the first byte are reserved).
func parseDescriptors(i []byte, offset *int) (o []*Descriptor, err error) {
	if *offset+2 > len(i) {
		err = errors.New("tsdemux: missing descriptors length")
		return
	}
	length := int(uint16(i[*offset]&0xf)<<8 | uint16(i[*offset+1]))
	*offset += 2
	return parseDescriptorList(i, offset, *offset+length)
}

// parseDescriptorsReader is the bit-reader flavour of parseDescriptors used by
// the table parsers built on bitio. It consumes exactly the 12-bit loop length
// and the loop itself: in the SDT and EIT entry layouts the 4 bits preceding
// the length belong to running_status and free_CA_mode, so reading anything
// more would shift every following field.
func parseDescriptorsReader(r *bitio.CountReader) (o []*Descriptor, err error) {
	length := int(r.TryReadBits(12))
	if r.TryError != nil {
		return nil, r.TryError
	}
	b := make([]byte, length)
	tryReadFull(r, b)
	if r.TryError != nil {
		return nil, r.TryError
	}
	var offset int
	return parseDescriptorList(b, &offset, length)
}
