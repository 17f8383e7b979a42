package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"hybrid-energy-platform/internal/models"
	"hybrid-energy-platform/internal/services"
)

const rule = 80

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func heading(w io.Writer, title string) {
	fmt.Fprintln(w, strings.Repeat("=", rule))
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, strings.Repeat("=", rule))
}

func printReport(w io.Writer, r *models.AnalysisReport) {
	heading(w, "HYBRID SYSTEM ANALYSIS")
	fmt.Fprintf(w, "Analysis ID:        %s\n", r.AnalysisID)
	fmt.Fprintf(w, "Weather:            %s\n", r.WeatherSource)

	s := r.Summary
	fmt.Fprintln(w, "\nDemand")
	fmt.Fprintf(w, "  Peak:             %.2f kW at hours %v\n", s.PeakDemandKW, s.PeakHours)
	fmt.Fprintf(w, "  Average:          %.2f kW (load factor %.2f)\n", s.AverageDemandKW, s.LoadFactor)
	fmt.Fprintf(w, "  Daily:            %.2f kWh\n", s.DailyConsumptionKWh)
	fmt.Fprintf(w, "  Annual:           %.0f kWh\n", s.AnnualConsumptionKWh)
	fmt.Fprintf(w, "  Critical load:    %.2f kW\n", s.CriticalLoadKW)

	categories := make([]string, 0, len(r.CategoryBreakdown))
	for c := range r.CategoryBreakdown {
		categories = append(categories, string(c))
	}
	sort.Strings(categories)
	for _, c := range categories {
		fmt.Fprintf(w, "  %-16s  %5.1f%%\n", c+":", 100*r.CategoryBreakdown.Share(models.Category(c)))
	}

	z := r.Sizing.Sizing
	fmt.Fprintf(w, "\nSizing (%s)\n", r.Sizing.Status)
	if r.Sizing.Reason != "" {
		fmt.Fprintf(w, "  Reason:           %s\n", r.Sizing.Reason)
	}
	fmt.Fprintf(w, "  PV array:         %.2f kW (%d panels)\n", z.PVSystemSizeKW, z.PanelCount)
	fmt.Fprintf(w, "  Battery:          %.2f kWh at %d V\n", z.BatteryCapacityKWh, z.BatteryBankVoltage)
	fmt.Fprintf(w, "  Inverter:         %.2f kW\n", z.InverterSizeKW)
	fmt.Fprintf(w, "  Generator:        %.2f kW\n", z.GeneratorSizeKW)
	fmt.Fprintf(w, "  Charge controller: %.0f A\n", z.ChargeControllerAmps)

	if f := r.Financial; f != nil {
		fmt.Fprintln(w, "\nFinance")
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
		fmt.Fprintln(tw, "\tRenewable\tDiesel\t")
		fmt.Fprintf(tw, "Initial cost\t%.0f\t%.0f\t\n", f.Renewable.InitialCost, f.Diesel.InitialCost)
		fmt.Fprintf(tw, "Annual cost\t%.0f\t%.0f\t\n", f.Renewable.AnnualCost, f.Diesel.AnnualCost)
		fmt.Fprintf(tw, "NPV\t%.0f\t%.0f\t\n", f.Renewable.NPV, f.Diesel.NPV)
		fmt.Fprintf(tw, "LCOE\t%.3f\t%.3f\t\n", f.Renewable.LCOE, f.Diesel.LCOE)
		tw.Flush()

		irr := fmt.Sprintf("%.2f%%", 100*f.IRR)
		if !f.IRRConverged {
			irr += " (not converged)"
		}
		fmt.Fprintf(w, "  IRR:              %s\n", irr)
		fmt.Fprintf(w, "  Payback:          %.1f years\n", f.Comparison.PaybackYears)
		fmt.Fprintf(w, "  Lifetime savings: %.0f\n", f.Comparison.LifetimeSavings)
		fmt.Fprintf(w, "  CO2 avoided:      %.0f kg\n", f.Environmental.CO2AvoidedKg)
	}

	if r.Uncertainty != nil {
		printSensitivity(w, r.Uncertainty)
		printMonteCarlo(w, r.Uncertainty)
	}

	if len(r.Recommendations) > 0 {
		fmt.Fprintln(w, "\nRecommendations")
		for _, rec := range r.Recommendations {
			fmt.Fprintf(w, "  - %s\n", rec)
		}
	}
}

func printSensitivity(w io.Writer, u *models.UncertaintyResult) {
	if len(u.Sensitivity) == 0 {
		return
	}
	heading(w, "SENSITIVITY")
	fmt.Fprintf(w, "Base NPV %.0f, base IRR %.2f%%\n\n", u.BaseNPV, 100*u.BaseIRR)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PARAMETER\tVALUE\tNPV\tΔNPV %\tIRR\tΔIRR %")
	for _, row := range u.Sensitivity {
		fmt.Fprintf(tw, "%s\t%g\t%.0f\t%+.1f\t%.2f%%\t%+.1f\n",
			row.Parameter, row.Value, row.NPV, row.NPVChangePct, 100*row.IRR, row.IRRChangePct)
	}
	tw.Flush()
}

func printMonteCarlo(w io.Writer, u *models.UncertaintyResult) {
	mc := u.MonteCarlo
	if mc == nil {
		return
	}
	heading(w, "MONTE CARLO")
	fmt.Fprintf(w, "Samples:            %d\n", mc.Samples)
	fmt.Fprintf(w, "NPV mean:           %.0f ± %.0f (std %.0f)\n", mc.NPVMean, mc.NPVStdError, mc.NPVStdDev)
	fmt.Fprintf(w, "NPV 5th-95th:       %.0f .. %.0f\n", mc.NPVP5, mc.NPVP95)
	fmt.Fprintf(w, "IRR mean:           %.2f%% (std %.2f%%)\n", 100*mc.IRRMean, 100*mc.IRRStdDev)
	fmt.Fprintf(w, "IRR 5th-95th:       %.2f%% .. %.2f%%\n", 100*mc.IRRP5, 100*mc.IRRP95)
	fmt.Fprintf(w, "P(NPV > 0):         %.1f%%\n", 100*mc.ProbabilityPositiveNPV)
}

func printImport(w io.Writer, result *services.ImportResult) {
	heading(w, "IMPORT COMPLETE")
	fmt.Fprintf(w, "Total Files:        %d\n", result.TotalFiles)
	fmt.Fprintf(w, "Imported:           %d\n", result.Imported)
	fmt.Fprintf(w, "Failed:             %d\n", result.Failed)
	fmt.Fprintf(w, "Equipment Items:    %d\n", result.Equipment)
	fmt.Fprintf(w, "Duration:           %v\n", result.Duration)

	if len(result.Errors) > 0 {
		fmt.Fprintf(w, "\nErrors (%d):\n", len(result.Errors))
		for i, errMsg := range result.Errors {
			if i < 10 {
				fmt.Fprintf(w, "  - %s\n", errMsg)
			}
		}
		if len(result.Errors) > 10 {
			fmt.Fprintf(w, "  ... and %d more errors\n", len(result.Errors)-10)
		}
	}
}
