package coordinator

import "github.com/roach88/presensi/internal/model"

// Commands names the chat commands the coordinator reacts to.
// Names are compared after model.CommandName normalization.
type Commands struct {
	Attend string
	Report string
	Start  string
}

// DefaultCommands returns the stock command names.
func DefaultCommands() Commands {
	return Commands{
		Attend: "presensi",
		Report: "report",
		Start:  "start",
	}
}

// normalized fills empty names from the defaults and normalizes the rest.
func (c Commands) normalized() Commands {
	def := DefaultCommands()
	pick := func(name, fallback string) string {
		if n := model.CommandName(name); n != "" {
			return n
		}
		return fallback
	}
	return Commands{
		Attend: pick(c.Attend, def.Attend),
		Report: pick(c.Report, def.Report),
		Start:  pick(c.Start, def.Start),
	}
}
