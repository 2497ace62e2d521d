package tsdemux

import (
	"bytes"
	"testing"

	"github.com/icza/bitio"
	"github.com/stretchr/testify/assert"
)

var descriptors = []*Descriptor{{
	IsParsed:         true,
	Length:           0x1,
	Raw:              []byte{0x7},
	StreamIdentifier: &DescriptorStreamIdentifier{ComponentTag: 0x7},
	Tag:              DescriptorTagStreamIdentifier,
}}

// descriptorsBytes writes a 12-bit length followed by the descriptors. Callers
// needing byte alignment write the 4 reserved bits first.
func descriptorsBytes(w *bitio.Writer) {
	writeBinary(w, "000000000011")                       // Overall length
	w.TryWriteByte(uint8(DescriptorTagStreamIdentifier)) // Tag
	w.TryWriteByte(uint8(1))                             // Length
	w.TryWriteByte(uint8(7))                             // Component tag
}

func TestParseDescriptors(t *testing.T) {
	buf := &bytes.Buffer{}
	w := bitio.NewWriter(buf)
	writeBinary(w, "0000") // Reserved
	descriptorsBytes(w)
	w.Close()

	var offset int
	ds, err := parseDescriptors(buf.Bytes(), &offset)
	assert.NoError(t, err)
	assert.Equal(t, descriptors, ds)
	assert.Equal(t, buf.Len(), offset)
}

func TestParseDescriptorList(t *testing.T) {
	// AC3
	bs := []byte{DescriptorTagAC3, 13, 0xf0, 1, 2, 3, 4, 'i', 'n', 'f', 'o'}
	// ISO639
	bs = append(bs, DescriptorTagISO639LanguageAndAudioType, 4, 'e', 'n', 'g', AudioTypeCleanEffects)
	// CA
	bs = append(bs, DescriptorTagCA, 6, 0x0b, 0x00, 0xe0, 0x64, 1, 2)
	// Maximum bitrate
	bs = append(bs, DescriptorTagMaximumBitrate, 3, 0xc0, 0x0, 0x1)
	// Network name
	bs = append(bs, DescriptorTagNetworkName, 4, 'n', 'a', 'm', 'e')
	// Service
	bs = append(bs, DescriptorTagService, 10, ServiceTypeDigitalTelevisionService, 4, 'p', 'r', 'o', 'v', 3, 's', 'r', 'v')
	// Service list
	bs = append(bs, DescriptorTagServiceList, 3, 0x0, 0x1, ServiceTypeDigitalTelevisionService)
	// Short event
	bs = append(bs, DescriptorTagShortEvent, 11, 'e', 'n', 'g', 3, 'e', 'v', 't', 3, 't', 'x', 't')
	// Content
	bs = append(bs, DescriptorTagContent, 2, 0x31, 0x5)
	// Parental rating
	bs = append(bs, DescriptorTagParentalRating, 4, 'f', 'r', 'a', 0x9)
	// Subtitling
	bs = append(bs, DescriptorTagSubtitling, 8, 'e', 'n', 'g', 0x10, 0x0, 0x1, 0x0, 0x2)
	// Teletext
	bs = append(bs, DescriptorTagTeletext, 5, 'e', 'n', 'g', 0x09, 0x15)
	// Fix the AC3 declared length (flags + 4 values + "info")
	bs[1] = 9

	var offset int
	ds, err := parseDescriptorList(bs, &offset, len(bs))
	assert.NoError(t, err)
	assert.Len(t, ds, 12)
	for _, d := range ds {
		assert.True(t, d.IsParsed, "tag 0x%x", d.Tag)
	}

	assert.Equal(t, &DescriptorAC3{
		AdditionalInfo:   []byte("info"),
		ASVC:             4,
		BSID:             2,
		ComponentType:    1,
		HasASVC:          true,
		HasBSID:          true,
		HasComponentType: true,
		HasMainID:        true,
		MainID:           3,
	}, ds[0].AC3)
	assert.Equal(t, &DescriptorISO639LanguageAndAudioType{Items: []*DescriptorISO639LanguageAndAudioTypeItem{{
		Language: []byte("eng"),
		Type:     AudioTypeCleanEffects,
	}}}, ds[1].ISO639LanguageAndAudioType)
	assert.Equal(t, &DescriptorCA{
		CAPID:       0x64,
		CASystemID:  0xb00,
		PrivateData: []byte{1, 2},
	}, ds[2].CA)
	assert.Equal(t, &DescriptorMaximumBitrate{Bitrate: 50}, ds[3].MaximumBitrate)
	assert.Equal(t, &DescriptorNetworkName{Name: []byte("name")}, ds[4].NetworkName)
	assert.Equal(t, &DescriptorService{
		Name:     []byte("srv"),
		Provider: []byte("prov"),
		Type:     ServiceTypeDigitalTelevisionService,
	}, ds[5].Service)
	assert.Equal(t, &DescriptorServiceList{Items: []*DescriptorServiceListItem{{
		ServiceID:   1,
		ServiceType: ServiceTypeDigitalTelevisionService,
	}}}, ds[6].ServiceList)
	assert.Equal(t, &DescriptorShortEvent{
		EventName: []byte("evt"),
		Language:  []byte("eng"),
		Text:      []byte("txt"),
	}, ds[7].ShortEvent)
	assert.Equal(t, &DescriptorContent{Items: []*DescriptorContentItem{{
		ContentNibbleLevel1: 3,
		ContentNibbleLevel2: 1,
		UserByte:            5,
	}}}, ds[8].Content)
	assert.Equal(t, &DescriptorParentalRating{Items: []*DescriptorParentalRatingItem{{
		CountryCode: []byte("fra"),
		Rating:      9,
	}}}, ds[9].ParentalRating)
	assert.Equal(t, 12, ds[9].ParentalRating.Items[0].MinimumAge())
	assert.Equal(t, &DescriptorSubtitling{Items: []*DescriptorSubtitlingItem{{
		AncillaryPageID:   2,
		CompositionPageID: 1,
		Language:          []byte("eng"),
		Type:              0x10,
	}}}, ds[10].Subtitling)
	assert.Equal(t, &DescriptorTeletext{Items: []*DescriptorTeletextItem{{
		Language: []byte("eng"),
		Magazine: 1,
		Page:     15,
		Type:     1,
	}}}, ds[11].Teletext)
}

func TestParseDescriptorListMalformedPayload(t *testing.T) {
	// A service descriptor too short for its decoder is preserved unparsed
	bs := []byte{DescriptorTagService, 2, 0x1, 0x0}
	var offset int
	ds, err := parseDescriptorList(bs, &offset, len(bs))
	assert.NoError(t, err)
	assert.Len(t, ds, 1)
	assert.False(t, ds[0].IsParsed)
	assert.Nil(t, ds[0].Service)
	assert.Equal(t, []byte{0x1, 0x0}, ds[0].Raw)
}

func TestParseDescriptorListOverrun(t *testing.T) {
	// A declared length overrunning the region fails the list
	bs := []byte{DescriptorTagNetworkName, 10, 'n'}
	var offset int
	_, err := parseDescriptorList(bs, &offset, len(bs))
	assert.Error(t, err)
}

func TestParseDescriptorListStrayBytes(t *testing.T) {
	bs := []byte{DescriptorTagStreamIdentifier, 1, 7, 0xab}
	var offset int
	_, err := parseDescriptorList(bs, &offset, 4)
	assert.Error(t, err)
}

func TestParseDescriptorsReader(t *testing.T) {
	buf := &bytes.Buffer{}
	w := bitio.NewWriter(buf)
	writeBinary(w, "0100") // Unaligned leading bits, as after running status + free CA
	descriptorsBytes(w)
	w.Close()

	r := bitio.NewCountReader(bytes.NewReader(buf.Bytes()))
	_ = r.TryReadBits(4)
	ds, err := parseDescriptorsReader(r)
	assert.NoError(t, err)
	assert.Equal(t, descriptors, ds)
	assert.Equal(t, int64(buf.Len())*8, r.BitsCount)
}
