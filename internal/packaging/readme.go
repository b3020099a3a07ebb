package packaging

import (
	"fmt"
	"strings"

	"breakupscli/pkg/contracts/domain"
)

// BuildReadme renders the plain-text run summary shipped inside the archive.
func BuildReadme(meta domain.RunMeta, contents domain.PackageContents) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Breakups Report\n")
	fmt.Fprintf(&b, "===============\n\n")
	fmt.Fprintf(&b, "Client:           %s\n", meta.ClientName)
	fmt.Fprintf(&b, "Run ID:           %s\n", meta.RunID)
	fmt.Fprintf(&b, "Generated:        %s\n", meta.AnalysisDate.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&b, "Sale comps:       %d\n", meta.TotalProperties)
	fmt.Fprintf(&b, "Lease comps:      %d\n\n", meta.LeaseCount)

	fmt.Fprintf(&b, "Contents\n")
	fmt.Fprintf(&b, "--------\n")
	fmt.Fprintf(&b, "Source workbook:      %s\n", includedLabel(contents.Excel))
	fmt.Fprintf(&b, "Charts:               %d\n", contents.Charts)
	fmt.Fprintf(&b, "PDF reports:          %d\n", contents.PDFs)
	fmt.Fprintf(&b, "PropertyRadar export: %s\n", includedLabel(contents.PropertyRadar))
	fmt.Fprintf(&b, "Data files:           %d\n", contents.DataFiles)

	return b.String()
}

func includedLabel(included bool) string {
	if included {
		return "included"
	}
	return "not included"
}
