// Package apn implements the APN model for surfactant solutions near the
// critical micelle concentration (cmc).
//
// The model describes how the free monomer concentration [S1] saturates as
// the total surfactant concentration [S]0 crosses the cmc, using a Gaussian
// transition of relative width r instead of the idealized sharp kink of
// pseudo-phase models. Electrical conductivity follows as a linear mix of
// the monomeric and micellized populations on top of the solvent background:
//
//	κ([S]0) = a·[S1] + b·([S]0 − [S1]) + c
//
// # Components
//
//   - Monomer, MonomerSeries: free monomer concentration [S1]
//   - Conductivity, ConductivitySeries: model conductivity κ
//   - ConductivityJacobian: analytic partial derivatives for least squares
//   - DegreeOfIonization: micellar degree of ionization α from fitted slopes
//   - Params: the five model parameters in canonical (cmc, r, a, b, c) order
//
// # Units
//
// The model is unit agnostic: concentrations and conductivities keep
// whatever units the data carries, and the fitted parameters come out in
// the matching quotient units. The conventional pairing is mM for
// concentration and µS/cm for conductivity.
//
// # Reference
//
// Al-Soufi, Piñeiro, Novo: "A model for monomer and micellar concentrations
// in surfactant solutions", J. Colloid Interface Sci. 2012, 370, 102-110.
package apn
