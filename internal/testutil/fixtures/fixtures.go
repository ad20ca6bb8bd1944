// Package fixtures holds sample program documents shared by the server tests.
package fixtures

// BlockID is the id of the observing block in Program.
const BlockID = "1b4e28ba-2fa1-11d2-883f-0016d3cca427"

// Program is a small MOSFIRE program with one of each definition kind.
const Program = `
- Targets:
  - name: NGC 1068
    RA: 40.6696
    Dec: -0.0133
    equinox: 2000
- OffsetPatterns:
  - name: dither
    offsets:
      - {dx: 0, dy: 2, posname: A}
      - {dx: 0, dy: -2, posname: B}
- InstrumentConfigs:
  - instrument: MOSFIRE
    filter: H
- DetectorConfigs:
  - instrument: MOSFIRE
    exptime: 120
    readoutmode: MCDS16
- ObservingBlocks:
  - id: ` + BlockID + `
    blocktype: science
    target:
      name: NGC 1068
      RA: 40.6696
      Dec: -0.0133
      equinox: 2000
    pattern:
      name: dither
      offsets:
        - {dx: 0, dy: 2, posname: A}
        - {dx: 0, dy: -2, posname: B}
    instconfig:
      instrument: MOSFIRE
      filter: H
    detconfig:
      - instrument: MOSFIRE
        exptime: 120
        readoutmode: MCDS16
`

// Telluric is a second program sharing no names with Program.
const Telluric = `
- Targets:
  - name: HIP 10559
    RA: 34.0
    Dec: 2.1
    equinox: 2000
`
