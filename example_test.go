package dnmerge_test

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/rs/zerolog"

	"github.com/agentstation/dnmerge"
	"github.com/agentstation/dnmerge/pkg/logging"
)

const (
	exampleWorkbook = "DN NUMBER (SAP),Material,Number of pieces,Weight (kg)\n" +
		"100,Steel,,\n" +
		"150,Glass,2,3.5\n"
	exampleReport = "Zakázka (Delivery),Materiál,Počet kusů,Hmotnost (kg)\n" +
		"100.0,Iron,4,50\n" +
		"200,Wood,,7\n"
)

// Example reconciles a workbook with a report and prints the summary.
func Example() {
	client, err := dnmerge.New()
	if err != nil {
		log.Fatal(err)
	}

	outcome, err := client.Run(context.Background(), dnmerge.Input{
		Primary:   dnmerge.Source{Name: "workbook.csv", Reader: strings.NewReader(exampleWorkbook)},
		Secondary: dnmerge.Source{Name: "report.csv", Reader: strings.NewReader(exampleReport)},
	})
	if err != nil {
		log.Fatal(err)
	}

	s := outcome.Summary()
	fmt.Printf("total=%d both=%d primary-only=%d secondary-only=%d\n", s.Total, s.Both, s.PrimaryOnly, s.SecondaryOnly)
	fmt.Printf("incomplete=%d backfilled=%d\n", s.Incomplete, s.Backfilled)

	if err := outcome.WriteXLSX(io.Discard); err != nil {
		log.Fatal(err)
	}
	// Output:
	// total=3 both=1 primary-only=1 secondary-only=1
	// incomplete=1 backfilled=2
}

// ExampleClient_hooks shows run callbacks and a request-scoped logger.
func ExampleClient_hooks() {
	client, err := dnmerge.New(dnmerge.WithProvenance(true))
	if err != nil {
		log.Fatal(err)
	}

	client.OnRunCompleted(func(o *dnmerge.Outcome) {
		fmt.Println("completed, added from report:", o.Summary().SecondaryOnly)
	})
	client.OnRunFailed(func(_ string, err error) {
		fmt.Println("failed:", err != nil)
	})

	logger := zerolog.Nop()
	ctx := logging.WithLogger(context.Background(), &logger)
	ctx = logging.WithRequestID(ctx, "example-001")

	_, _ = client.Run(ctx, dnmerge.Input{
		Primary:   dnmerge.Source{Name: "workbook.csv", Reader: strings.NewReader(exampleWorkbook)},
		Secondary: dnmerge.Source{Name: "report.csv", Reader: strings.NewReader(exampleReport)},
	})
	_, _ = client.Run(ctx, dnmerge.Input{
		Primary:   dnmerge.Source{Name: "workbook.csv", Reader: strings.NewReader(exampleWorkbook)},
		Secondary: dnmerge.Source{Name: "report.csv", Reader: strings.NewReader("Foo,Bar\n1,2\n")},
	})
	// Output:
	// completed, added from report: 1
	// failed: true
}
