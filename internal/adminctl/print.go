package adminctl

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/BijjaSagar/vashihat-nama/internal/server/models"
)

func printUsers(w io.Writer, users []models.User) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tMOBILE\tLAST CHECK-IN\tEVERY\tSWITCH")
	for _, u := range users {
		sw := "off"
		if u.SwitchActive {
			sw = "on"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%dd\t%s\n",
			u.ID, u.Name, u.MobileNumber, u.LastCheckIn.UTC().Format(time.DateTime), u.CheckInFrequencyDays, sw)
	}
	return tw.Flush()
}
