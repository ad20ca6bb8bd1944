package mcpserver

// DocumentFormatURI is the resource URI of DocumentFormat.
const DocumentFormatURI = "odl://document-format"

// DocumentFormat describes the YAML program document that tools accept and
// return. LLM consumers should read it before writing a program.
const DocumentFormat = `# Observing Program Document Format

A program is a YAML list. Every entry is a map holding one or more of the
section keys below, each mapping to a list of definitions.

| Key                 | Definition                                  |
|---------------------|---------------------------------------------|
| ` + "`Targets`" + `           | sidereal target                             |
| ` + "`OffsetPatterns`" + `    | named list of telescope offsets             |
| ` + "`InstrumentConfigs`" + ` | instrument setup, keyed by ` + "`instrument`" + `       |
| ` + "`DetectorConfigs`" + `   | exposure setup, keyed by ` + "`instrument`" + `         |
| ` + "`ObservingBlocks`" + `   | target + pattern + instrument + detectors   |

## Rules

1. **Instruments** are ` + "`KCWI`" + `, ` + "`MOSFIRE`" + ` and ` + "`NIRES`" + `. Any other name is rejected.
2. **Coordinates** are decimal degrees (` + "`RA`" + `, ` + "`Dec`" + `). ` + "`equinox`" + ` defaults to 2000.
3. **Offsets** carry ` + "`dx`" + `, ` + "`dy`" + ` (arcsec), ` + "`dr`" + ` (degrees), an optional ` + "`frame`" + `
   (defaults to the instrument's detector frame) and a ` + "`posname`" + `.
4. **Detector configs** need ` + "`exptime`" + ` (seconds) and usually ` + "`nexp`" + `. IR
   detectors take ` + "`readoutmode`" + ` (CDS or MCDS<n>) and ` + "`coadds`" + `.
5. **Blocks** have a ` + "`blocktype`" + ` (science, telluric, standard, calibration,
   focus) and an optional ` + "`id`" + ` (UUID). ` + "`associatedblocks`" + ` lists other block ids.
6. **Validation** is strict: tools report every failing definition at once.

## Example

` + "```" + `yaml
- Targets:
  - name: NGC 1068
    RA: 40.6696
    Dec: -0.0133
    equinox: 2000
- OffsetPatterns:
  - name: ABBA
    offsets:
      - {dx: 0, dy: 1.25, posname: A}
      - {dx: 0, dy: -1.25, posname: B}
      - {dx: 0, dy: -1.25, posname: B}
      - {dx: 0, dy: 1.25, posname: A}
- ObservingBlocks:
  - blocktype: science
    target: {name: NGC 1068, RA: 40.6696, Dec: -0.0133}
    pattern:
      name: ABBA
      offsets:
        - {dx: 0, dy: 1.25, posname: A}
        - {dx: 0, dy: -1.25, posname: B}
    instconfig: {instrument: MOSFIRE, filter: K}
    detconfig:
      - {instrument: MOSFIRE, exptime: 180, nexp: 1, readoutmode: MCDS16}
` + "```" + `

## Importing

- ` + "`import_document`" + ` stores a program under ` + "`imports/<name>.yaml`" + `. Pass either
  ` + "`yaml`" + ` (inline text) or ` + "`url`" + ` (http/https, at most 10 MB).
- A stored program is indexed immediately and can be fetched back with
  ` + "`get_definition`" + `.
`
