package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/asticode/go-astikit"
	"github.com/dvbtools/go-tsdemux"
	"github.com/pkg/profile"
)

// Flags
var (
	ctx, cancel     = context.WithCancel(context.Background())
	cpuProfiling    = flag.Bool("cp", false, "if yes, cpu profiling is enabled")
	format          = flag.String("f", "", "the output format (json)")
	inputPath       = flag.String("i", "", "the input path (- for stdin)")
	memoryProfiling = flag.Bool("mp", false, "if yes, memory profiling is enabled")
	verifyCRC32     = flag.Bool("crc", false, "if yes, section CRCs are verified")
)

func main() {
	// Init
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage of %s <tables|packets|default>:\n", os.Args[0])
		flag.PrintDefaults()
	}
	cmd := astikit.FlagCmd()
	flag.Parse()

	// Handle signals
	handleSignals()

	// Start profiling
	if *cpuProfiling {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	} else if *memoryProfiling {
		defer profile.Start(profile.MemProfile, profile.ProfilePath(".")).Stop()
	}

	// Read the input
	bs, err := readInput()
	if err != nil {
		log.Fatal(fmt.Errorf("tsprobe: reading input failed: %w", err))
	}

	// Create the demuxer
	opts := []func(*tsdemux.Demuxer){}
	if *verifyCRC32 {
		opts = append(opts, tsdemux.OptVerifyCRC32())
	}
	if cmd == "packets" {
		opts = append(opts, tsdemux.OptStorePackets())
	}
	dmx := tsdemux.New(ctx, opts...)
	tsdemux.SetLogger(log.Default())

	// Demux
	if err = dmx.AddBuffer(bs); err != nil {
		log.Fatal(fmt.Errorf("tsprobe: demuxing failed: %w", err))
	}
	if n := dmx.IgnoredPackets(); n > 0 {
		log.Printf("%d packets ignored for lacking a filter\n", n)
	}
	if n := dmx.ContinuityErrors(); n > 0 {
		log.Printf("%d continuity errors observed\n", n)
	}

	// Switch on command
	switch cmd {
	case "tables":
		if err = tables(dmx); err != nil {
			log.Fatal(fmt.Errorf("tsprobe: dumping tables failed: %w", err))
		}
	case "packets":
		packets(dmx)
	default:
		// Build the programs
		pgms := programs(dmx)

		// Print
		switch *format {
		case "json":
			e := json.NewEncoder(os.Stdout)
			e.SetIndent("", "  ")
			if err = e.Encode(pgms); err != nil {
				log.Fatal(fmt.Errorf("tsprobe: json encoding to stdout failed: %w", err))
			}
		default:
			fmt.Println("Programs are:")
			for _, pgm := range pgms {
				log.Printf("* %s\n", pgm)
			}
		}
	}
}

func handleSignals() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch)
	go func() {
		for s := range ch {
			if s != syscall.SIGURG {
				log.Printf("Received signal %s\n", s)
			}
			switch s {
			case syscall.SIGABRT, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM:
				cancel()
				return
			}
		}
	}()
}

func readInput() (bs []byte, err error) {
	// Validate input
	if len(*inputPath) <= 0 {
		err = fmt.Errorf("use -i to indicate an input path")
		return
	}

	// Read stdin or file
	if *inputPath == "-" {
		if bs, err = io.ReadAll(os.Stdin); err != nil {
			err = fmt.Errorf("tsprobe: reading stdin failed: %w", err)
			return
		}
		return
	}
	if bs, err = os.ReadFile(*inputPath); err != nil {
		err = fmt.Errorf("tsprobe: reading %s failed: %w", *inputPath, err)
		return
	}
	return
}

func tables(dmx *tsdemux.Demuxer) (err error) {
	e := json.NewEncoder(os.Stdout)
	e.SetIndent("", "  ")
	for _, t := range dmx.Tables() {
		fmt.Printf("%s (table id 0x%02x, version %d, completed %s):\n", tsdemux.TableTypeString(t.TableID), t.TableID, t.VersionNumber, t.CompletedAt.Format("15:04:05"))
		if err = e.Encode(t); err != nil {
			err = fmt.Errorf("tsprobe: json encoding table 0x%02x failed: %w", t.TableID, err)
			return
		}
	}
	return
}

func packets(dmx *tsdemux.Demuxer) {
	log.Println("Parsed packets:")
	for _, p := range dmx.Packets() {
		log.Printf("PKT: %d\n", p.Header.PID)
		log.Printf("  Continuity Counter: %v\n", p.Header.ContinuityCounter)
		log.Printf("  Payload Unit Start Indicator: %v\n", p.Header.PayloadUnitStartIndicator)
		log.Printf("  Has Payload: %v\n", p.Header.HasPayload)
		log.Printf("  Has Adaptation Field: %v\n", p.Header.HasAdaptationField)
		log.Printf("  Transport Error Indicator: %v\n", p.Header.TransportErrorIndicator)
		log.Printf("  Transport Priority: %v\n", p.Header.TransportPriority)
		log.Printf("  Transport Scrambling Control: %v\n", p.Header.TransportScramblingControl)
		if p.Header.HasAdaptationField {
			log.Printf("  Adaptation Field: %+v\n", p.AdaptationField)
		}
	}
}

func programs(dmx *tsdemux.Demuxer) (o []*Program) {
	pat := dmx.GetTable(tsdemux.TableIDPAT)
	if pat == nil || pat.PAT == nil {
		return
	}
	pmt := dmx.GetTable(tsdemux.TableIDPMT)
	for _, p := range pat.PAT.Programs {
		// Program number 0 is reserved to NIT
		if p.ProgramNumber == 0 {
			continue
		}
		pgm := newProgram(p.ProgramNumber, p.ProgramMapID)
		if pmt != nil && pmt.PMT != nil && pmt.PMT.ProgramNumber == p.ProgramNumber {
			for _, dsc := range pmt.PMT.ProgramDescriptors {
				pgm.Descriptors = append(pgm.Descriptors, descriptorToString(dsc))
			}
			for _, es := range pmt.PMT.ElementaryStreams {
				s := newStream(es.ElementaryPID, es.StreamType)
				for _, dsc := range es.ElementaryStreamDescriptors {
					s.Descriptors = append(s.Descriptors, descriptorToString(dsc))
				}
				pgm.Streams = append(pgm.Streams, s)
			}
		}
		o = append(o, pgm)
	}
	return
}

// Program represents a program
type Program struct {
	Descriptors []string  `json:"descriptors,omitempty"`
	ID          uint16    `json:"id,omitempty"`
	MapID       uint16    `json:"map_id,omitempty"`
	Streams     []*Stream `json:"streams,omitempty"`
}

// Stream represents a stream
type Stream struct {
	Descriptors []string `json:"descriptors,omitempty"`
	ID          uint16   `json:"id,omitempty"`
	Type        uint8    `json:"type,omitempty"`
}

func newProgram(id, mapID uint16) *Program {
	return &Program{
		ID:    id,
		MapID: mapID,
	}
}

func newStream(id uint16, streamType uint8) *Stream {
	return &Stream{
		ID:   id,
		Type: streamType,
	}
}

// String implements the Stringer interface
func (p Program) String() (o string) {
	o = fmt.Sprintf("[%d] - Map ID: %d", p.ID, p.MapID)
	for _, d := range p.Descriptors {
		o += fmt.Sprintf(" - %s", d)
	}
	for _, s := range p.Streams {
		o += fmt.Sprintf("\n  * %s", s.String())
	}
	return
}

// String implements the Stringer interface
func (s Stream) String() (o string) {
	// Get type
	t := fmt.Sprintf("unlisted stream type %d", s.Type)
	switch s.Type {
	case tsdemux.StreamTypeMPEG1Audio:
		t = "MPEG-1 audio"
	case tsdemux.StreamTypeMPEG2HalvedSampleRateAudio:
		t = "MPEG-2 halved sample rate audio"
	case tsdemux.StreamTypeMPEG2PacketizedData:
		t = "DVB subtitles/VBI or AC-3"
	case tsdemux.StreamTypeLowerBitrateVideo:
		t = "H264 video"
	}

	// Output
	o = fmt.Sprintf("[%d] - Type: %s", s.ID, t)
	for _, d := range s.Descriptors {
		o += fmt.Sprintf(" - %s", d)
	}
	return
}

func descriptorToString(d *tsdemux.Descriptor) string {
	if !d.IsParsed {
		return fmt.Sprintf("[%#x] raw %d bytes", d.Tag, len(d.Raw))
	}
	switch d.Tag {
	case tsdemux.DescriptorTagISO639LanguageAndAudioType:
		var ls []string
		for _, i := range d.ISO639LanguageAndAudioType.Items {
			ls = append(ls, string(i.Language))
		}
		return fmt.Sprintf("[ISO639] language %s", strings.Join(ls, ", "))
	case tsdemux.DescriptorTagService:
		return fmt.Sprintf("[Service] %s by %s", d.Service.Name, d.Service.Provider)
	case tsdemux.DescriptorTagShortEvent:
		return fmt.Sprintf("[Short event] %s", d.ShortEvent.EventName)
	case tsdemux.DescriptorTagStreamIdentifier:
		return fmt.Sprintf("[Stream identifier] component tag %d", d.StreamIdentifier.ComponentTag)
	case tsdemux.DescriptorTagSubtitling:
		var ls []string
		for _, i := range d.Subtitling.Items {
			ls = append(ls, string(i.Language))
		}
		return fmt.Sprintf("[Subtitling] language %s", strings.Join(ls, ", "))
	case tsdemux.DescriptorTagTeletext:
		var ls []string
		for _, i := range d.Teletext.Items {
			ls = append(ls, string(i.Language))
		}
		return fmt.Sprintf("[Teletext] language %s", strings.Join(ls, ", "))
	}
	return fmt.Sprintf("[%#x] parsed", d.Tag)
}
