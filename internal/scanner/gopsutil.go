package scanner

import "github.com/shirou/gopsutil/v4/process"

// SystemLister enumerates OS processes via gopsutil.
type SystemLister struct{}

func (SystemLister) Processes() ([]Process, error) {
	procs, err := process.Processes()
	if err != nil {
		return nil, err
	}

	out := make([]Process, 0, len(procs))
	for _, p := range procs {
		out = append(out, systemProcess{p})
	}
	return out, nil
}

type systemProcess struct {
	p *process.Process
}

func (s systemProcess) Pid() int32 {
	return s.p.Pid
}

func (s systemProcess) Name() (string, error) {
	return s.p.Name()
}

func (s systemProcess) OpenFilePaths() ([]string, error) {
	stats, err := s.p.OpenFiles()
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(stats))
	for _, st := range stats {
		paths = append(paths, st.Path)
	}
	return paths, nil
}

func (s systemProcess) Running() (bool, error) {
	return s.p.IsRunning()
}
