package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dmitrijs2005/garagekeeper/internal/client/models"
)

func renderCars(w io.Writer, cars []models.Car) {
	if len(cars) == 0 {
		fmt.Fprintln(w, dimStyle.Render("No cars."))
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tBRAND\tMODEL\tYEAR\tCOLOR\tLICENSE\tOWNER")
	for _, c := range cars {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\t%s\t%s\n", c.ID, c.Brand, c.Model, c.Year, c.Color, c.License, c.Owner())
	}
	tw.Flush()
}

func renderUsers(w io.Writer, users []models.User) {
	if len(users) == 0 {
		fmt.Fprintln(w, dimStyle.Render("No users."))
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tUSERNAME\tNAME\tEMAIL\tJOINED\tADMIN")
	for _, u := range users {
		admin := "no"
		if u.IsSuperuser {
			admin = "yes"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", u.ID, u.Username, u.FullName(), u.Email, u.JoinedDate(), admin)
	}
	tw.Flush()
}
